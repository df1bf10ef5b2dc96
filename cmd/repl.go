package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fzft/go-redis-commands/commands"
	"github.com/fzft/go-redis-commands/deps/linenoise"
	"github.com/fzft/go-redis-commands/log"
	"github.com/fzft/go-redis-commands/resp"
)

const replPrompt = "redis-commands> "

const replHelp = `Type a command with its arguments to see where its keys are, e.g.
  sort mylist BY weight_* GET obj:*->name STORE out
Other commands:
  flags <command>   show the flags of a command
  help              show this help
  clear             clear the screen
  quit, exit        leave
`

type lineEditor interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	ClearScreen() error
}

func (cli *RedisCli) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Query key positions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			line := linenoise.New(cli.complete)
			defer line.Close()

			var historyFile string
			if isatty.IsTerminal(os.Stdin.Fd()) {
				historyFile = getDotfilePath(CliHisFileEnv, CliHisFileDefault)
				if historyFile != "" {
					if err := line.HistoryLoad(historyFile); err != nil {
						log.Logger.Warn("load history", zap.String("path", historyFile), zap.Error(err))
					}
				}
			}
			save := func() {
				if historyFile == "" {
					return
				}
				if err := line.HistorySave(historyFile); err != nil {
					log.Logger.Warn("save history", zap.String("path", historyFile), zap.Error(err))
				}
			}
			return cli.repl(line, cmd.OutOrStdout(), save)
		},
	}
}

func (cli *RedisCli) repl(ed lineEditor, w io.Writer, save func()) error {
	for {
		line, err := ed.Prompt(replPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, linenoise.ErrAborted) {
				return nil
			}
			return err
		}

		argv, err := resp.SplitArgs(line)
		if err != nil {
			fmt.Fprintln(w, "Invalid argument(s)")
			ed.AppendHistory(line)
			save()
			continue
		} else if len(argv) == 0 {
			continue
		}
		ed.AppendHistory(line)
		save()

		switch {
		case strings.EqualFold(argv[0], "quit") || strings.EqualFold(argv[0], "exit"):
			return nil
		case len(argv) == 1 && strings.EqualFold(argv[0], "clear"):
			if err := ed.ClearScreen(); err != nil {
				return err
			}
		case len(argv) == 1 && strings.EqualFold(argv[0], "help"):
			fmt.Fprint(w, replHelp)
		case len(argv) == 2 && strings.EqualFold(argv[0], "flags"):
			c, ok := cli.table.Lookup(argv[1], commands.FoldCase())
			if !ok {
				fmt.Fprintf(w, "(error) %v\n", cli.explain(&commands.UnknownCommandError{Name: strings.ToLower(argv[1])}))
				continue
			}
			fmt.Fprintln(w, strings.Join(c.Flags, " "))
		default:
			cli.replKeys(w, argv)
		}
	}
}

func (cli *RedisCli) replKeys(w io.Writer, argv []string) {
	args := make([]any, len(argv)-1)
	for i, arg := range argv[1:] {
		args[i] = arg
	}
	keys, err := cli.table.KeyIndexes(argv[0], args, commands.FoldCase(), commands.ParseExternalKey())
	if err != nil {
		fmt.Fprintf(w, "(error) %v\n", cli.explain(err))
		return
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "(no keys)")
		return
	}
	printKeys(w, keys, args, true)
}

// complete proposes command names for the first word of line.
func (cli *RedisCli) complete(line string) []string {
	if strings.ContainsRune(line, ' ') {
		return nil
	}
	names := cli.table.WithPrefix(strings.ToLower(line))
	if line != strings.ToLower(line) {
		for i, name := range names {
			names[i] = strings.ToUpper(name)
		}
	}
	return names
}
