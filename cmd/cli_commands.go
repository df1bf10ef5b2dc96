package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fzft/go-redis-commands/commands"
	"github.com/fzft/go-redis-commands/log"
	"github.com/fzft/go-redis-commands/resp"
)

func foldOption(fold bool) []commands.Option {
	if fold {
		return []commands.Option{commands.FoldCase()}
	}
	return nil
}

func (cli *RedisCli) keysCommand() *cobra.Command {
	var fold, external, stream bool
	cmd := &cobra.Command{
		Use:   "keys <command> [arg ...]",
		Short: "Print the positions of the keys in a command's arguments",
		Long: "Print the positions of the keys in a command's arguments.\n" +
			"With --resp the commands are read from stdin in RESP or inline form, " +
			"such as an append only file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []commands.Option
			if fold {
				opts = append(opts, commands.FoldCase())
			}
			if external {
				opts = append(opts, commands.ParseExternalKey())
			}
			if stream {
				if len(args) != 0 {
					return errors.New("--resp takes no arguments")
				}
				return cli.keysFromStream(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
			}
			if len(args) == 0 {
				return errors.New("missing command name")
			}
			argv := make([]any, len(args)-1)
			for i, arg := range args[1:] {
				argv[i] = arg
			}
			keys, err := cli.table.KeyIndexes(args[0], argv, opts...)
			if err != nil {
				return cli.explain(err)
			}
			printKeys(cmd.OutOrStdout(), keys, argv, cli.tty)
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&fold, "fold", false, "Match the command name case-insensitively")
	cmd.Flags().BoolVar(&external, "external", false, "Report the key name length of SORT BY and GET patterns")
	cmd.Flags().BoolVar(&stream, "resp", false, "Read commands from stdin")
	return cmd
}

// encodeCommand writes a command line as a RESP multibulk request, the
// format read by keys --resp.
func (cli *RedisCli) encodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <command> [arg ...]",
		Short: "Print a command as a RESP request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(resp.Encode(args[0], args[1:]...))
			return err
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// printKeys writes one position per line. Annotated output adds the argument
// found at each position.
func printKeys(w io.Writer, keys []commands.KeyPosition, argv []any, annotate bool) {
	for _, k := range keys {
		if !annotate {
			if k.External {
				fmt.Fprintf(w, "%d %d\n", k.Index, k.NameLen)
			} else {
				fmt.Fprintf(w, "%d\n", k.Index)
			}
			continue
		}
		text := "(missing)"
		if k.Index < len(argv) {
			text = strconv.Quote(fmt.Sprint(argv[k.Index]))
		}
		if k.External && k.Index < len(argv) {
			name := fmt.Sprint(argv[k.Index])
			fmt.Fprintf(w, "%d) %s key %s\n", k.Index, text, strconv.Quote(name[:min(k.NameLen, len(name))]))
		} else {
			fmt.Fprintf(w, "%d) %s\n", k.Index, text)
		}
	}
}

// keysFromStream prints one line per command read from r. Command names in
// a stream are matched case-insensitively.
func (cli *RedisCli) keysFromStream(r io.Reader, w io.Writer, opts []commands.Option) error {
	opts = append(slices.Clone(opts), commands.FoldCase())
	reader := resp.NewReader(r)
	for {
		argv, err := reader.ReadCommand()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		name := strings.ToLower(argText(argv[0]))
		keys, err := cli.table.KeyIndexes(name, argv[1:], opts...)
		if err != nil {
			log.Logger.Warn("skipping command", zap.String("command", name), zap.Error(err))
			continue
		}
		positions := make([]string, len(keys))
		for i, k := range keys {
			positions[i] = k.String()
		}
		fmt.Fprintf(w, "%s: %s\n", name, strings.Join(positions, " "))
	}
}

func argText(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}

func (cli *RedisCli) existsCommand() *cobra.Command {
	var fold bool
	cmd := &cobra.Command{
		Use:   "exists <command>",
		Short: "Report whether a command is known",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cli.table.Exists(args[0], foldOption(fold)...))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fold, "fold", false, "Match the command name case-insensitively")
	return cmd
}

func (cli *RedisCli) flagCommand() *cobra.Command {
	var fold bool
	cmd := &cobra.Command{
		Use:   "flag <command> <flag>",
		Short: "Report whether a command carries a flag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := cli.table.HasFlag(args[0], args[1], foldOption(fold)...)
			if err != nil {
				return cli.explain(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fold, "fold", false, "Match the command name case-insensitively")
	return cmd
}

func (cli *RedisCli) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [prefix]",
		Short: "List the known commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := cli.table.List()
			if len(args) == 1 {
				names = cli.table.WithPrefix(strings.ToLower(args[0]))
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (cli *RedisCli) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <command>",
		Short: "Show the metadata of a command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToLower(args[0])
			c, ok := cli.table.Lookup(name)
			if !ok {
				return cli.explain(&commands.UnknownCommandError{Name: name})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "name: %s\n", name)
			fmt.Fprintf(w, "arity: %d\n", c.Arity)
			fmt.Fprintf(w, "flags: %s\n", strings.Join(c.Flags, " "))
			fmt.Fprintf(w, "keys: first=%d last=%d step=%d\n", c.KeyStart, c.KeyStop, c.Step)
			if slices.Contains(commands.MovableKeyCommands(), name) {
				fmt.Fprintln(w, "key rule: per command")
			}
			return nil
		},
	}
}

func (cli *RedisCli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "redis-commands %s\n", cli.Version())
			if cli.build.BuildID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "build: %s\n", cli.build.BuildID)
			}
			return nil
		},
	}
}
