package commands

import "strings"

// Command is the metadata a server reports for one command through COMMAND.
// KeyStart, KeyStop and Step use the server's own addressing, where the
// command name is position 0 and the first argument position 1. A KeyStop
// of zero or below counts from the end of the argument list.
type Command struct {
	Arity    int      `json:"arity"`
	Flags    []string `json:"flags"`
	KeyStart int      `json:"keyStart"`
	KeyStop  int      `json:"keyStop"`
	Step     int      `json:"step"`
}

type CommandFlags uint64

const (
	CmdWrite CommandFlags = 1 << iota
	CmdReadOnly
	CmdDenyOOM
	CmdModule // Command exported by module.
	CmdAdmin
	CmdPubSub
	CmdNoScript
	CmdBlocking // Has potential to block.
	CmdLoading
	CmdStale
	CmdSkipMonitor
	CmdSkipSlowLog
	CmdAsking
	CmdFast
	CmdNoAuth
	CmdMayReplicate
	CmdSentinel
	CmdOnlySentinel
	CmdNoMandatoryKeys
	CmdProtected
	CmdNoAsyncLoading
	CmdNoMulti
	CmdMovableKeys // The legacy range spec doesn't cover all keys.
	CmdAllowBusy
)

type commandFlagItem struct {
	name string
	flag CommandFlags
}

// commandFlagNames lists the flag names in the order the server reports them.
var commandFlagNames = []commandFlagItem{
	{"write", CmdWrite},
	{"readonly", CmdReadOnly},
	{"denyoom", CmdDenyOOM},
	{"module", CmdModule},
	{"admin", CmdAdmin},
	{"pubsub", CmdPubSub},
	{"noscript", CmdNoScript},
	{"blocking", CmdBlocking},
	{"loading", CmdLoading},
	{"stale", CmdStale},
	{"skip_monitor", CmdSkipMonitor},
	{"skip_slowlog", CmdSkipSlowLog},
	{"asking", CmdAsking},
	{"fast", CmdFast},
	{"no_auth", CmdNoAuth},
	{"may_replicate", CmdMayReplicate},
	{"sentinel", CmdSentinel},
	{"only_sentinel", CmdOnlySentinel},
	{"no_mandatory_keys", CmdNoMandatoryKeys},
	{"protected", CmdProtected},
	{"no_async_loading", CmdNoAsyncLoading},
	{"no_multi", CmdNoMulti},
	{"movablekeys", CmdMovableKeys},
	{"allow_busy", CmdAllowBusy},
}

// ParseFlags converts flag names into a CommandFlags bitset. Names the
// server may report but that have no bit (older or module flags) are ignored.
func ParseFlags(names []string) CommandFlags {
	var flags CommandFlags
	for _, name := range names {
		for _, item := range commandFlagNames {
			if item.name == name {
				flags |= item.flag
				break
			}
		}
	}
	return flags
}

func (f CommandFlags) Has(flag CommandFlags) bool {
	return f&flag == flag
}

func (f CommandFlags) String() string {
	var names []string
	for _, item := range commandFlagNames {
		if f&item.flag != 0 {
			names = append(names, item.name)
		}
	}
	return strings.Join(names, "|")
}
