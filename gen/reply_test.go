package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzft/go-redis-commands/resp"
)

// commandEntry writes one COMMAND entry; setType is '*' for RESP2 flags or
// '~' for RESP3.
func commandEntry(setType byte, name string, arity int, flags []string, first, last, step int, extra ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%d\r\n$%d\r\n%s\r\n:%d\r\n", 6+len(extra), len(name), name, arity)
	fmt.Fprintf(&b, "%c%d\r\n", setType, len(flags))
	for _, flag := range flags {
		fmt.Fprintf(&b, "+%s\r\n", flag)
	}
	fmt.Fprintf(&b, ":%d\r\n:%d\r\n:%d\r\n", first, last, step)
	for _, e := range extra {
		b.WriteString(e)
	}
	return b.String()
}

func commandReply(entries ...string) []byte {
	return []byte(fmt.Sprintf("*%d\r\n%s", len(entries), strings.Join(entries, "")))
}

func TestReplySource(t *testing.T) {
	data := commandReply(
		commandEntry('*', "get", 2, []string{"readonly", "fast"}, 1, 1, 1),
		commandEntry('*', "mset", -3, []string{"write", "denyoom"}, 1, -1, 2),
		commandEntry('*', "ping", -1, nil, 0, 0, 0),
	)
	cmds, err := NewReplySource(data).Commands(context.Background())
	require.NoError(t, err)

	want := map[string]RawCommand{
		"get":  raw("get", 2, []string{"readonly", "fast"}, 1, 1, 1),
		"mset": raw("mset", -3, []string{"write", "denyoom"}, 1, -1, 2),
		"ping": raw("ping", -1, []string{}, 0, 0, 0),
	}
	if diff := cmp.Diff(want, cmds); diff != "" {
		t.Errorf("Commands() mismatch (-want +got):\n%s", diff)
	}
}

func TestReplySourceRESP3(t *testing.T) {
	// Redis 7 appends ACL categories, tips, key specs and subcommands.
	extra := []string{"~1\r\n+@read\r\n", "*0\r\n", "*0\r\n", "*0\r\n"}
	data := commandReply(commandEntry('~', "get", 2, []string{"readonly", "fast"}, 1, 1, 1, extra...))

	cmds, err := NewReplySource(data).Commands(context.Background())
	require.NoError(t, err)
	assert.Equal(t, raw("get", 2, []string{"readonly", "fast"}, 1, 1, 1), cmds["get"])
}

func TestReplySourceErrors(t *testing.T) {
	tests := map[string]string{
		"truncated":      "*1\r\n*6\r\n$3\r\nget\r\n:2\r\n",
		"not an array":   "+OK\r\n",
		"short entry":    "*1\r\n*2\r\n$3\r\nget\r\n:2\r\n",
		"bad arity":      "*1\r\n*6\r\n$3\r\nget\r\n+2\r\n*0\r\n:1\r\n:1\r\n:1\r\n",
		"bad flags":      "*1\r\n*6\r\n$3\r\nget\r\n:2\r\n:0\r\n:1\r\n:1\r\n:1\r\n",
		"trailing data":  string(commandReply()) + "+OK\r\n",
		"server error":   "-NOAUTH Authentication required.\r\n",
		"bad name":       "*1\r\n*6\r\n:1\r\n:2\r\n*0\r\n:1\r\n:1\r\n:1\r\n",
		"bad flag value": "*1\r\n*6\r\n$3\r\nget\r\n:2\r\n*1\r\n:7\r\n:1\r\n:1\r\n:1\r\n",
	}
	for name, data := range tests {
		_, err := NewReplySource([]byte(data)).Commands(context.Background())
		assert.Error(t, err, name)
	}

	_, err := NewReplySource([]byte("*1\r\n*6\r\n$3\r\nget")).Commands(context.Background())
	assert.ErrorIs(t, err, resp.ErrIncomplete)
}

func TestReplySourceBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "command.resp")
	data := commandReply(
		commandEntry('*', "brpop", -3, []string{"write", "blocking"}, 1, 1, 1),
		commandEntry('*', "eval", -3, []string{"noscript", "movablekeys"}, 0, 0, 0),
	)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	src, err := ReadReplyFile(path)
	require.NoError(t, err)
	table, err := Build(context.Background(), src, []string{"eval"})
	require.NoError(t, err)
	assert.Equal(t, -2, table["brpop"].KeyStop)
	assert.Contains(t, table, "quit")

	_, err = ReadReplyFile(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
