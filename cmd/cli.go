package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/fzft/go-redis-commands/commands"
	"github.com/fzft/go-redis-commands/config"
	"github.com/fzft/go-redis-commands/gen"
	"github.com/fzft/go-redis-commands/log"
)

var (
	CliVersion        = "1.0.0"
	CliHisFileEnv     = "REDIS_COMMANDS_HISTFILE"
	CliHisFileDefault = ".redis_commands_history"
)

// BuildInfo is set by the linker in the main package.
type BuildInfo struct {
	GitSHA1  string
	GitDirty string
	BuildID  string
}

type RedisCli struct {
	build     BuildInfo
	tablePath string
	logLevel  string
	table     *commands.Table

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	// tty enables annotated output for humans.
	tty bool

	dial func(cfg config.RedisConfig) gen.Source
}

func NewRedisCli(build BuildInfo) *RedisCli {
	return &RedisCli{
		build:  build,
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		tty:    isatty.IsTerminal(os.Stdout.Fd()),
		dial: func(cfg config.RedisConfig) gen.Source {
			return gen.Dial(cfg)
		},
	}
}

func (cli *RedisCli) Version() string {
	version := CliVersion
	// Add git commit and working tree status when available
	if sha1Int, err := strconv.ParseUint(cli.build.GitSHA1, 16, 64); err == nil && sha1Int != 0 {
		version = fmt.Sprintf("%s (git:%s", version, cli.build.GitSHA1)
		if dirtyInt, err := strconv.ParseInt(cli.build.GitDirty, 10, 64); err == nil && dirtyInt != 0 {
			version = fmt.Sprintf("%s-dirty", version)
		}
		version = fmt.Sprintf("%s)", version)
	}
	return version
}

// Command builds the root command and its subcommands.
func (cli *RedisCli) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "redis-commands",
		Short:         "Inspect Redis command metadata and key positions",
		Version:       cli.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := log.InitLogger(cli.logLevel); err != nil {
				return err
			}
			return cli.loadTable()
		},
	}
	root.SetIn(cli.in)
	root.SetOut(cli.out)
	root.SetErr(cli.errOut)

	root.PersistentFlags().StringVar(&cli.tablePath, "table", "", "Command table file (default: embedded table)")
	root.PersistentFlags().StringVar(&cli.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(
		cli.keysCommand(),
		cli.encodeCommand(),
		cli.existsCommand(),
		cli.flagCommand(),
		cli.listCommand(),
		cli.infoCommand(),
		cli.replCommand(),
		cli.genCommand(),
		cli.versionCommand(),
	)
	return root
}

// Run executes the command line args, without the program name.
func (cli *RedisCli) Run(args []string) error {
	root := cli.Command()
	root.SetArgs(args)
	return root.Execute()
}

func (cli *RedisCli) loadTable() error {
	if cli.table != nil {
		return nil
	}
	if cli.tablePath == "" {
		cli.table = commands.Default()
		return nil
	}
	f, err := os.Open(cli.tablePath)
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := commands.LoadTable(f)
	if err != nil {
		return fmt.Errorf("%s: %w", cli.tablePath, err)
	}
	cli.table = table
	return nil
}

func getDotfilePath(envOverride, dotFilename string) string {
	var dotPath string

	path := os.Getenv(envOverride)
	if path != "" {
		if path == "/dev/null" {
			return ""
		}
		dotPath = path
	} else {
		home := os.Getenv("HOME")
		if home != "" {
			dotPath = fmt.Sprintf("%s/%s", home, dotFilename)
		}
	}
	return dotPath
}
