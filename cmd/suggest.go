package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/fzft/go-redis-commands/commands"
)

// maxSuggestDistance is the largest edit distance still offered as a typo fix.
const maxSuggestDistance = 2

// suggest returns the known command closest to name, or "".
func suggest(name string, names []string) string {
	name = strings.ToLower(name)
	best, bestDistance := "", maxSuggestDistance+1
	for _, candidate := range names {
		if d := fuzzy.LevenshteinDistance(name, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	if best != "" {
		return best
	}

	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// explain adds a spelling suggestion to unknown command errors.
func (cli *RedisCli) explain(err error) error {
	var unknown *commands.UnknownCommandError
	if !errors.As(err, &unknown) {
		return err
	}
	if s := suggest(unknown.Name, cli.table.List()); s != "" {
		return fmt.Errorf("%w, did you mean '%s'?", err, s)
	}
	return err
}
