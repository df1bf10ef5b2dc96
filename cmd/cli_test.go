package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzft/go-redis-commands/commands"
	"github.com/fzft/go-redis-commands/config"
	"github.com/fzft/go-redis-commands/gen"
	"github.com/fzft/go-redis-commands/resp"
)

func newTestCli(stdin string) (*RedisCli, *bytes.Buffer) {
	var out bytes.Buffer
	cli := &RedisCli{
		in:     strings.NewReader(stdin),
		out:    &out,
		errOut: io.Discard,
	}
	return cli, &out
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	cli, out := newTestCli("")
	require.NoError(t, cli.Run(args))
	return out.String()
}

func TestKeysCommand(t *testing.T) {
	assert.Equal(t, "0\n2\n", run(t, "keys", "mset", "foo", "v1", "bar", "v2"))
	assert.Equal(t, "1\n2\n", run(t, "keys", "zdiff", "2", "a", "b"))
	assert.Equal(t, "0\n", run(t, "keys", "--fold", "GET", "foo"))
	assert.Equal(t, "0\n", run(t, "keys", "set", "foo", "-1"))
	assert.Equal(t, "", run(t, "keys", "ping"))
	assert.Equal(t, "0\n2 6\n", run(t, "keys", "--external", "sort", "key", "BY", "hash:*->field"))
}

func TestKeysCommandAnnotated(t *testing.T) {
	cli, out := newTestCli("")
	cli.tty = true
	require.NoError(t, cli.Run([]string{"keys", "--external", "sort", "key", "BY", "hash:*->field"}))
	assert.Equal(t, "0) \"key\"\n2) \"hash:*->field\" key \"hash:*\"\n", out.String())

	cli, out = newTestCli("")
	cli.tty = true
	require.NoError(t, cli.Run([]string{"keys", "eval", "script", "2", "k1"}))
	assert.Equal(t, "2) \"k1\"\n3) (missing)\n", out.String())
}

func TestKeysCommandUnknown(t *testing.T) {
	cli, _ := newTestCli("")
	err := cli.Run([]string{"keys", "gett", "foo"})
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrUnknownCommand)
	assert.Equal(t, "unknown command 'gett', did you mean 'get'?", err.Error())

	cli, _ = newTestCli("")
	assert.Error(t, cli.Run([]string{"keys"}))
}

func TestKeysCommandStream(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(resp.Encode("SET", "foo", "bar"))
	stream.WriteString("MGET a b\r\n")
	stream.Write(resp.Encode("NOPE", "x"))
	stream.Write(resp.Encode("SORT", "k", "BY", "w_*->f"))
	stream.Write(resp.Encode("EVAL", "return 1", "0"))

	cli, out := newTestCli(stream.String())
	require.NoError(t, cli.Run([]string{"keys", "--resp"}))
	assert.Equal(t, "set: 0\nmget: 0 1\nsort: 0 2\neval: \n", out.String())

	cli, out = newTestCli(stream.String())
	require.NoError(t, cli.Run([]string{"keys", "--resp", "--external"}))
	assert.Contains(t, out.String(), "sort: 0 [2,3]\n")

	cli, _ = newTestCli("*2\r\n$3\r\nGET\r\n$3\r\nfo")
	assert.ErrorIs(t, cli.Run([]string{"keys", "--resp"}), resp.ErrIncomplete)

	cli, _ = newTestCli("")
	assert.Error(t, cli.Run([]string{"keys", "--resp", "get"}))
}

func TestEncodeCommand(t *testing.T) {
	out := run(t, "encode", "SORT", "k", "BY", "w_*->f", "--limit")
	assert.Equal(t, "*6\r\n$4\r\nSORT\r\n$1\r\nk\r\n$2\r\nBY\r\n$6\r\nw_*->f\r\n$7\r\n--limit\r\n", out)

	cli, keys := newTestCli(out + run(t, "encode", "del", "a", "b"))
	require.NoError(t, cli.Run([]string{"keys", "--resp"}))
	assert.Equal(t, "sort: 0 2\ndel: 0 1\n", keys.String())

	cli, _ = newTestCli("")
	assert.Error(t, cli.Run([]string{"encode"}))
}

func TestExistsCommand(t *testing.T) {
	assert.Equal(t, "true\n", run(t, "exists", "set"))
	assert.Equal(t, "false\n", run(t, "exists", "SET"))
	assert.Equal(t, "true\n", run(t, "exists", "--fold", "SET"))
}

func TestFlagCommand(t *testing.T) {
	assert.Equal(t, "true\n", run(t, "flag", "set", "write"))
	assert.Equal(t, "false\n", run(t, "flag", "set", "readonly"))
	assert.Equal(t, "true\n", run(t, "flag", "--fold", "SeLeCt", "fast"))

	cli, _ := newTestCli("")
	err := cli.Run([]string{"flag", "UNKNOWN", "write"})
	assert.ErrorIs(t, err, commands.ErrUnknownCommand)
}

func TestListCommand(t *testing.T) {
	assert.Equal(t, "zunion\nzunionstore\n", run(t, "list", "ZUNION"))
	lines := strings.Split(strings.TrimSpace(run(t, "list")), "\n")
	assert.Equal(t, commands.Default().List(), lines)
}

func TestInfoCommand(t *testing.T) {
	assert.Equal(t, "name: mset\narity: -3\nflags: write denyoom\nkeys: first=1 last=-1 step=2\n", run(t, "info", "MSET"))
	assert.Contains(t, run(t, "info", "eval"), "key rule: per command\n")

	cli, _ := newTestCli("")
	assert.ErrorIs(t, cli.Run([]string{"info", "nope"}), commands.ErrUnknownCommand)
}

func TestVersion(t *testing.T) {
	cli, out := newTestCli("")
	cli.build = BuildInfo{GitSHA1: "a1b2c3", GitDirty: "1", BuildID: "ci-42"}
	require.NoError(t, cli.Run([]string{"version"}))
	assert.Equal(t, "redis-commands "+CliVersion+" (git:a1b2c3-dirty)\nbuild: ci-42\n", out.String())

	cli.build = BuildInfo{GitSHA1: "unknown"}
	assert.Equal(t, CliVersion, cli.Version())
}

func TestTableFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.json")
	data := `{"only": {"arity": -2, "flags": ["readonly"], "keyStart": 1, "keyStop": -1, "step": 1}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	assert.Equal(t, "only\n", run(t, "--table", path, "list"))
	assert.Equal(t, "0\n1\n", run(t, "--table", path, "keys", "only", "a", "b"))

	require.NoError(t, os.WriteFile(path, []byte(`{"BAD": {}}`), 0o644))
	cli, _ := newTestCli("")
	assert.ErrorIs(t, cli.Run([]string{"--table", path, "list"}), commands.ErrInvalidTable)
}

type fakeSource map[string]gen.RawCommand

func (f fakeSource) Commands(context.Context) (map[string]gen.RawCommand, error) {
	return f, nil
}

func TestGenCommand(t *testing.T) {
	src := fakeSource{}
	for _, name := range commands.Default().List() {
		c, _ := commands.Default().Lookup(name)
		src[name] = gen.RawCommand{Name: name, Arity: c.Arity, Flags: c.Flags, FirstKey: c.KeyStart, LastKey: c.KeyStop, Step: c.Step}
	}

	var dialed config.RedisConfig
	out := filepath.Join(t.TempDir(), "commands.json")
	cli, _ := newTestCli("")
	cli.dial = func(cfg config.RedisConfig) gen.Source {
		dialed = cfg
		return src
	}
	require.NoError(t, cli.Run([]string{"gen", "--addr", "10.0.0.1:7000", "--out", out}))
	assert.Equal(t, "10.0.0.1:7000", dialed.Addr)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	embedded, err := os.ReadFile("../commands/commands.json")
	require.NoError(t, err)
	assert.Equal(t, string(embedded), string(written))
}

func TestGenCommandMismatch(t *testing.T) {
	src := fakeSource{
		"get": {Name: "get", Arity: 2, Flags: []string{"readonly", "movablekeys"}, FirstKey: 1, LastKey: 1, Step: 1},
	}
	out := filepath.Join(t.TempDir(), "commands.json")
	cli, _ := newTestCli("")
	cli.dial = func(config.RedisConfig) gen.Source { return src }

	err := cli.Run([]string{"gen", "--out", out})
	var mismatch *gen.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"get"}, mismatch.Unhandled)
	assert.NoFileExists(t, out)
}

// savedCommandReply renders table as the RESP2 reply of COMMAND.
func savedCommandReply(table *commands.Table) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "*%d\r\n", table.Len())
	for _, name := range table.List() {
		c, _ := table.Lookup(name)
		fmt.Fprintf(&b, "*6\r\n$%d\r\n%s\r\n:%d\r\n*%d\r\n", len(name), name, c.Arity, len(c.Flags))
		for _, flag := range c.Flags {
			fmt.Fprintf(&b, "+%s\r\n", flag)
		}
		fmt.Fprintf(&b, ":%d\r\n:%d\r\n:%d\r\n", c.KeyStart, c.KeyStop, c.Step)
	}
	return b.Bytes()
}

func TestGenCommandFromFile(t *testing.T) {
	dir := t.TempDir()
	reply := filepath.Join(dir, "command.resp")
	require.NoError(t, os.WriteFile(reply, savedCommandReply(commands.Default()), 0o644))

	out := filepath.Join(dir, "commands.json")
	cli, _ := newTestCli("")
	cli.dial = func(config.RedisConfig) gen.Source {
		t.Fatal("dialed a server")
		return nil
	}
	require.NoError(t, cli.Run([]string{"gen", "--from-file", reply, "--out", out}))

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	embedded, err := os.ReadFile("../commands/commands.json")
	require.NoError(t, err)
	assert.Equal(t, string(embedded), string(written))

	cli, _ = newTestCli("")
	assert.Error(t, cli.Run([]string{"gen", "--from-file", filepath.Join(dir, "missing"), "--out", out}))
}
