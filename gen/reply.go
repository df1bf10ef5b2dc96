package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/fzft/go-redis-commands/resp"
)

// ReplySource replays a COMMAND reply saved in RESP2 or RESP3 form, e.g.
//
//	printf 'COMMAND\r\n' | nc 127.0.0.1 6379 > command.resp
//
// so that a table can be rebuilt without a running server.
type ReplySource struct {
	data []byte
}

func NewReplySource(data []byte) *ReplySource {
	return &ReplySource{data: data}
}

func ReadReplyFile(path string) (*ReplySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewReplySource(data), nil
}

func (s *ReplySource) Commands(ctx context.Context) (map[string]RawCommand, error) {
	node, rest, err := resp.Decode(s.data)
	if err != nil {
		return nil, fmt.Errorf("decode COMMAND reply: %w", err)
	}
	if len(bytes.TrimSpace(rest)) != 0 {
		return nil, fmt.Errorf("decode COMMAND reply: %w: trailing data", resp.ErrProtocol)
	}

	var entries []resp.Node
	switch n := node.(type) {
	case resp.Array:
		entries = n.Elements
	case resp.Error:
		return nil, fmt.Errorf("COMMAND reply: %s", n.Message)
	default:
		return nil, fmt.Errorf("COMMAND reply: %w: expected an array, got %T", resp.ErrProtocol, node)
	}

	cmds := make(map[string]RawCommand, len(entries))
	for i, entry := range entries {
		rc, err := rawCommand(entry)
		if err != nil {
			return nil, fmt.Errorf("COMMAND reply entry %d: %w", i, err)
		}
		cmds[rc.Name] = rc
	}
	return cmds, nil
}

// rawCommand reads name, arity, flags, first key, last key and step, the
// leading fields of every COMMAND entry since Redis 2.8.13.
func rawCommand(node resp.Node) (RawCommand, error) {
	entry, ok := node.(resp.Array)
	if !ok || len(entry.Elements) < 6 {
		return RawCommand{}, fmt.Errorf("%w: expected an array of at least 6 fields", resp.ErrProtocol)
	}
	fields := entry.Elements

	name, ok := text(fields[0])
	if !ok || name == "" {
		return RawCommand{}, fmt.Errorf("%w: bad command name", resp.ErrProtocol)
	}
	var ints [4]int
	for i, f := range []resp.Node{fields[1], fields[3], fields[4], fields[5]} {
		n, ok := f.(resp.Integer)
		if !ok {
			return RawCommand{}, fmt.Errorf("%w: %s: expected an integer, got %T", resp.ErrProtocol, name, f)
		}
		ints[i] = int(n.Value)
	}

	var flagNodes []resp.Node
	switch f := fields[2].(type) {
	case resp.Array:
		flagNodes = f.Elements
	case resp.Set:
		flagNodes = f.Elements
	default:
		return RawCommand{}, fmt.Errorf("%w: %s: expected flags, got %T", resp.ErrProtocol, name, f)
	}
	flags := make([]string, 0, len(flagNodes))
	for _, f := range flagNodes {
		flag, ok := text(f)
		if !ok {
			return RawCommand{}, fmt.Errorf("%w: %s: bad flag %T", resp.ErrProtocol, name, f)
		}
		flags = append(flags, flag)
	}

	return RawCommand{
		Name:     name,
		Arity:    ints[0],
		Flags:    flags,
		FirstKey: ints[1],
		LastKey:  ints[2],
		Step:     ints[3],
	}, nil
}

func text(node resp.Node) (string, bool) {
	switch n := node.(type) {
	case resp.SimpleString:
		return n.Value, true
	case resp.BlobString:
		return n.Value, true
	case resp.VerbatimString:
		return n.Value, true
	}
	return "", false
}
