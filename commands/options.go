package commands

import "strings"

type options struct {
	foldCase         bool
	parseExternalKey bool
}

// Option tunes a single table query.
type Option func(*options)

// FoldCase lowercases the command name before the lookup.
func FoldCase() Option {
	return func(o *options) {
		o.foldCase = true
	}
}

// ParseExternalKey makes KeyIndexes report, for the SORT BY and GET patterns,
// the length of the key name in front of a "->" hash field reference.
func ParseExternalKey() Option {
	return func(o *options) {
		o.parseExternalKey = true
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) commandName(name string) string {
	if o.foldCase {
		return strings.ToLower(name)
	}
	return name
}
