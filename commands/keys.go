package commands

import (
	"math"
	"slices"
	"strconv"
)

// maxDynamicKeys bounds a dynamic count block. No command sent to a server can
// carry more arguments than its multibulk limit.
const maxDynamicKeys = 1024 * 1024

// KeyPosition is the index of a key in a command's argument list. External is
// set for SORT BY and GET patterns when ParseExternalKey is requested, NameLen
// then holds the length of the key name in front of "->".
type KeyPosition struct {
	Index    int
	NameLen  int
	External bool
}

func (p KeyPosition) String() string {
	if p.External {
		return "[" + strconv.Itoa(p.Index) + "," + strconv.Itoa(p.NameLen) + "]"
	}
	return strconv.Itoa(p.Index)
}

// Indexes drops the external key annotation.
func Indexes(positions []KeyPosition) []int {
	out := make([]int, len(positions))
	for i, p := range positions {
		out[i] = p.Index
	}
	return out
}

type keyFunc func(args []any, o *options) []KeyPosition

// keyFuncs holds the commands whose keys can not be described by the
// first/last/step triple. Every one of them is flagged movablekeys.
var keyFuncs = map[string]keyFunc{
	"zunionstore": destinationAndDynamicKeys,
	"zinterstore": destinationAndDynamicKeys,
	"zdiffstore":  destinationAndDynamicKeys,

	"eval":       dynamicKeysAt(1),
	"evalsha":    dynamicKeysAt(1),
	"eval_ro":    dynamicKeysAt(1),
	"evalsha_ro": dynamicKeysAt(1),
	"fcall":      dynamicKeysAt(1),
	"fcall_ro":   dynamicKeysAt(1),
	"blmpop":     dynamicKeysAt(1),
	"bzmpop":     dynamicKeysAt(1),

	"sintercard": dynamicKeysAt(0),
	"lmpop":      dynamicKeysAt(0),
	"zunion":     dynamicKeysAt(0),
	"zinter":     dynamicKeysAt(0),
	"zmpop":      dynamicKeysAt(0),
	"zintercard": dynamicKeysAt(0),
	"zdiff":      dynamicKeysAt(0),

	"georadius":         geoStoreKeys(5),
	"georadiusbymember": geoStoreKeys(4),

	"sort":    sortKeys,
	"sort_ro": sortKeys,

	"migrate": migrateKeys,

	"xread":      streamKeys(0),
	"xreadgroup": streamKeys(3),
}

// MovableKeyCommands returns the sorted names of the commands resolved by a
// dedicated rule instead of the key spec stored in the table.
func MovableKeyCommands() []string {
	names := make([]string, 0, len(keyFuncs))
	for name := range keyFuncs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// KeyIndexes returns the positions of the keys in args for the named command.
// The result is empty, never nil, when the command takes no keys.
func (t *Table) KeyIndexes(name string, args []any, opts ...Option) ([]KeyPosition, error) {
	o := newOptions(opts)
	e, ok := t.lookup(name, o)
	if !ok {
		return nil, &UnknownCommandError{Name: o.commandName(name)}
	}
	return e.keys(o.commandName(name), args, o), nil
}

// KeyIndexesOf is KeyIndexes for any slice or array of arguments, such as
// []string or [][]byte.
func (t *Table) KeyIndexesOf(name string, args any, opts ...Option) ([]KeyPosition, error) {
	o := newOptions(opts)
	e, ok := t.lookup(name, o)
	if !ok {
		return nil, &UnknownCommandError{Name: o.commandName(name)}
	}
	list, err := Args(args)
	if err != nil {
		return nil, err
	}
	return e.keys(o.commandName(name), list, o), nil
}

func (e *entry) keys(name string, args []any, o *options) []KeyPosition {
	if fn, ok := keyFuncs[name]; ok {
		return fn(args, o)
	}
	return strideKeys(e.cmd, len(args))
}

// strideKeys applies the first/last/step key spec. A non-positive last key is
// relative to the end of the argument list.
func strideKeys(cmd Command, argc int) []KeyPosition {
	keys := []KeyPosition{}
	if cmd.Step <= 0 {
		return keys
	}
	start := cmd.KeyStart - 1
	stop := cmd.KeyStop
	if stop <= 0 {
		stop = argc + cmd.KeyStop + 1
	}
	for i := start; i < stop; i += cmd.Step {
		keys = append(keys, KeyPosition{Index: i})
	}
	return keys
}

// dynamicKeys reads a key count at args[start] and returns the positions that
// follow it.
func dynamicKeys(keys []KeyPosition, args []any, start int) []KeyPosition {
	var n float64
	if start < len(args) {
		n = toNumber(args[start])
	} else {
		n = math.NaN()
	}
	if math.IsNaN(n) || n <= 0 {
		return keys
	}
	count := maxDynamicKeys
	if n < maxDynamicKeys {
		count = int(math.Ceil(n))
	}
	for i := 0; i < count; i++ {
		keys = append(keys, KeyPosition{Index: start + 1 + i})
	}
	return keys
}

func dynamicKeysAt(start int) keyFunc {
	return func(args []any, _ *options) []KeyPosition {
		return dynamicKeys([]KeyPosition{}, args, start)
	}
}

func destinationAndDynamicKeys(args []any, _ *options) []KeyPosition {
	return dynamicKeys([]KeyPosition{{Index: 0}}, args, 1)
}

// keyAfterToken returns the index following the first occurrence of token at
// or after start, or -1. The token must not be the last argument.
func keyAfterToken(args []any, start int, token string) int {
	for i := start; i < len(args)-1; i++ {
		if equalToken(toText(args[i]), token) {
			return i + 1
		}
	}
	return -1
}

func geoStoreKeys(start int) keyFunc {
	return func(args []any, _ *options) []KeyPosition {
		keys := []KeyPosition{{Index: 0}}
		if i := keyAfterToken(args, start, "STORE"); i > 0 {
			keys = append(keys, KeyPosition{Index: i})
		}
		if i := keyAfterToken(args, start, "STOREDIST"); i > 0 {
			keys = append(keys, KeyPosition{Index: i})
		}
		return keys
	}
}

// sortKeys handles SORT key [BY pattern] [GET pattern ...] [STORE destination].
// Only textual arguments are considered directives, GET # refers to the
// element itself.
func sortKeys(args []any, o *options) []KeyPosition {
	keys := []KeyPosition{{Index: 0}}
	pattern := func(i int) KeyPosition {
		if o.parseExternalKey {
			return KeyPosition{Index: i, NameLen: externalKeyNameLength(args[i]), External: true}
		}
		return KeyPosition{Index: i}
	}
	for i := 1; i < len(args)-1; i++ {
		directive, ok := textOf(args[i])
		if !ok {
			continue
		}
		switch {
		case equalToken(directive, "GET"):
			i++
			if s, ok := textOf(args[i]); !ok || s != "#" {
				keys = append(keys, pattern(i))
			}
		case equalToken(directive, "BY"):
			i++
			keys = append(keys, pattern(i))
		case equalToken(directive, "STORE"):
			i++
			keys = append(keys, KeyPosition{Index: i})
		}
	}
	return keys
}

// migrateKeys handles MIGRATE host port key|"" db timeout [...] [KEYS key ...].
func migrateKeys(args []any, _ *options) []KeyPosition {
	keys := []KeyPosition{}
	if len(args) > 2 {
		if s, ok := textOf(args[2]); ok && s == "" {
			for i := 5; i < len(args)-1; i++ {
				if s, ok := textOf(args[i]); ok && equalToken(s, "KEYS") {
					for j := i + 1; j < len(args); j++ {
						keys = append(keys, KeyPosition{Index: j})
					}
					break
				}
			}
			return keys
		}
	}
	return append(keys, KeyPosition{Index: 2})
}

// streamKeys returns the first half of the arguments after STREAMS, the
// second half being the matching IDs.
func streamKeys(start int) keyFunc {
	return func(args []any, _ *options) []KeyPosition {
		keys := []KeyPosition{}
		for i := start; i < len(args)-1; i++ {
			if !equalToken(toText(args[i]), "STREAMS") {
				continue
			}
			last := i + (len(args)-1-i)/2
			for j := i + 1; j <= last; j++ {
				keys = append(keys, KeyPosition{Index: j})
			}
			break
		}
		return keys
	}
}
