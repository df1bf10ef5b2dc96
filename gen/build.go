package gen

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/fzft/go-redis-commands/commands"
	"github.com/fzft/go-redis-commands/log"
)

const movableKeysFlag = "movablekeys"

// quitCommand is added when the server does not report QUIT.
var quitCommand = commands.Command{
	Arity: 1,
	Flags: []string{"loading", "stale", "readonly"},
}

// MismatchError lists the commands whose movablekeys flag disagrees with the
// set of commands the resolver has a dedicated rule for.
type MismatchError struct {
	// Unhandled are flagged movablekeys but have no rule.
	Unhandled []string
	// Unflagged have a rule but are missing or not flagged movablekeys.
	Unflagged []string
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	b.WriteString("movablekeys mismatch:")
	for _, name := range e.Unhandled {
		b.WriteString("\n- " + name + ": flagged movablekeys but not handled")
	}
	for _, name := range e.Unflagged {
		b.WriteString("\n- " + name + ": handled but not flagged movablekeys")
	}
	return b.String()
}

// Build fetches the commands from src, applies the known corrections to the
// server's reply and checks them against handled, the names resolved by a
// dedicated rule. Nothing is returned when the check fails.
func Build(ctx context.Context, src Source, handled []string) (map[string]commands.Command, error) {
	raw, err := src.Commands(ctx)
	if err != nil {
		return nil, err
	}
	log.Logger.Info("fetched commands", zap.Int("commands", len(raw)))

	table := make(map[string]commands.Command, len(raw)+1)
	for key, rc := range raw {
		name := rc.Name
		if name == "" {
			name = key
		}
		name = strings.ToLower(name)
		if strings.ContainsRune(name, ' ') {
			log.Logger.Warn("skipping command", zap.String("command", name))
			continue
		}
		table[name] = correct(name, rc)
	}

	if _, ok := table["quit"]; !ok {
		log.Logger.Debug("adding missing command", zap.String("command", "quit"))
		table["quit"] = commands.Command{
			Arity: quitCommand.Arity,
			Flags: slices.Clone(quitCommand.Flags),
		}
	}

	if err := checkMovableKeys(table, handled); err != nil {
		return nil, err
	}
	return table, nil
}

func correct(name string, rc RawCommand) commands.Command {
	cmd := commands.Command{
		Arity:    rc.Arity,
		Flags:    slices.Clone(rc.Flags),
		KeyStart: rc.FirstKey,
		KeyStop:  rc.LastKey,
		Step:     rc.Step,
	}
	if cmd.Flags == nil {
		cmd.Flags = []string{}
	}
	// Servers once reported an arity of 0 for commands taking any number of
	// arguments.
	if cmd.Arity == 0 {
		log.Logger.Debug("fixing arity", zap.String("command", name))
		cmd.Arity = 1
	}
	// Old servers reported the timeout of BRPOP as its last key.
	if name == "brpop" && cmd.KeyStop == 1 {
		log.Logger.Debug("fixing last key", zap.String("command", name))
		cmd.KeyStop = -2
	}
	return cmd
}

func checkMovableKeys(table map[string]commands.Command, handled []string) error {
	rules := make(map[string]struct{}, len(handled))
	for _, name := range handled {
		rules[name] = struct{}{}
	}

	mismatch := &MismatchError{}
	for name, cmd := range table {
		if _, ok := rules[name]; !ok && slices.Contains(cmd.Flags, movableKeysFlag) {
			mismatch.Unhandled = append(mismatch.Unhandled, name)
		}
	}
	for name := range rules {
		cmd, ok := table[name]
		if !ok || !slices.Contains(cmd.Flags, movableKeysFlag) {
			mismatch.Unflagged = append(mismatch.Unflagged, name)
		}
	}
	if len(mismatch.Unhandled) == 0 && len(mismatch.Unflagged) == 0 {
		return nil
	}
	slices.Sort(mismatch.Unhandled)
	slices.Sort(mismatch.Unflagged)
	return fmt.Errorf("check commands: %w", mismatch)
}
