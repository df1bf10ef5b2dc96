package commands

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/fzft/go-redis-commands/db"
)

//go:embed commands.json
var embeddedTable []byte

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

type entry struct {
	cmd   Command
	flags map[string]struct{}
	bits  CommandFlags
}

// Table is an immutable command metadata table. All methods are safe for
// concurrent use.
type Table struct {
	commands *db.HashTable[string, *entry]
	names    []string
	index    *db.RaxTree[*entry]
}

// Default returns the table generated from a live server and embedded in the
// package. It is decoded on first use.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := LoadTable(bytes.NewReader(embeddedTable))
		if err != nil {
			panic(fmt.Sprintf("commands: embedded table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// NewTable builds a table from name to metadata records. The records are
// copied, later changes to cmds do not affect the table.
func NewTable(cmds map[string]Command) *Table {
	t := &Table{
		commands: db.NewHashTable[string, *entry](len(cmds)*2 + 1),
		names:    make([]string, 0, len(cmds)),
		index:    db.NewRaxTree[*entry](),
	}
	for name, cmd := range cmds {
		cmd.Flags = slices.Clone(cmd.Flags)
		if cmd.Flags == nil {
			cmd.Flags = []string{}
		}
		e := &entry{
			cmd:   cmd,
			flags: make(map[string]struct{}, len(cmd.Flags)),
			bits:  ParseFlags(cmd.Flags),
		}
		for _, flag := range cmd.Flags {
			e.flags[flag] = struct{}{}
		}
		t.commands.Set(name, e)
		t.index.Insert([]byte(name), e)
		t.names = append(t.names, name)
	}
	slices.Sort(t.names)
	return t
}

// LoadTable decodes a JSON table as written by the generator. Every name must
// be lowercase and free of spaces.
func LoadTable(r io.Reader) (*Table, error) {
	var cmds map[string]Command
	if err := json.NewDecoder(r).Decode(&cmds); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	for name, cmd := range cmds {
		if name == "" || name != strings.ToLower(name) || strings.ContainsRune(name, ' ') {
			return nil, fmt.Errorf("%w: bad command name %q", ErrInvalidTable, name)
		}
		if cmd.Step < 0 {
			return nil, fmt.Errorf("%w: negative step for %q", ErrInvalidTable, name)
		}
	}
	return NewTable(cmds), nil
}

func (t *Table) lookup(name string, o *options) (*entry, bool) {
	return t.commands.Get(o.commandName(name))
}

// Exists reports whether name is a known command.
func (t *Table) Exists(name string, opts ...Option) bool {
	_, ok := t.lookup(name, newOptions(opts))
	return ok
}

// HasFlag reports whether the command carries flag. Flag names match exactly.
func (t *Table) HasFlag(name, flag string, opts ...Option) (bool, error) {
	o := newOptions(opts)
	e, ok := t.lookup(name, o)
	if !ok {
		return false, &UnknownCommandError{Name: o.commandName(name)}
	}
	_, ok = e.flags[flag]
	return ok, nil
}

// Lookup returns a copy of the metadata for name.
func (t *Table) Lookup(name string, opts ...Option) (Command, bool) {
	e, ok := t.lookup(name, newOptions(opts))
	if !ok {
		return Command{}, false
	}
	cmd := e.cmd
	cmd.Flags = slices.Clone(e.cmd.Flags)
	return cmd, true
}

// Flags returns the flag bitset of name, zero for unknown commands.
func (t *Table) Flags(name string, opts ...Option) CommandFlags {
	if e, ok := t.lookup(name, newOptions(opts)); ok {
		return e.bits
	}
	return 0
}

// List returns every command name in sorted order.
func (t *Table) List() []string {
	return slices.Clone(t.names)
}

// WithPrefix returns the sorted command names that start with prefix.
func (t *Table) WithPrefix(prefix string) []string {
	var names []string
	t.index.WalkPrefix([]byte(prefix), func(key []byte, _ *entry) bool {
		names = append(names, string(key))
		return true
	})
	return names
}

func (t *Table) Len() int {
	return t.commands.Len()
}
