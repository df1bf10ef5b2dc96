package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fzft/go-redis-commands/commands"
	"github.com/fzft/go-redis-commands/config"
	"github.com/fzft/go-redis-commands/gen"
	"github.com/fzft/go-redis-commands/log"
)

func (cli *RedisCli) genCommand() *cobra.Command {
	var configPath, addr, out, fromFile string
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Regenerate the command table from a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Redis.Addr = addr
			}
			if out != "" {
				cfg.Output.Path = out
			}
			if !cmd.Flags().Changed("log-level") && cfg.Log.Level != "" {
				if err := log.InitLogger(cfg.Log.Level); err != nil {
					return err
				}
			}

			var src gen.Source
			if fromFile != "" {
				reply, err := gen.ReadReplyFile(fromFile)
				if err != nil {
					return err
				}
				src = reply
				log.Logger.Info("generating command table", zap.String("reply", fromFile), zap.String("out", cfg.Output.Path))
			} else {
				src = cli.dial(cfg.Redis)
				if c, ok := src.(io.Closer); ok {
					defer c.Close()
				}
				log.Logger.Info("generating command table", zap.String("addr", cfg.Redis.Addr), zap.String("out", cfg.Output.Path))
			}

			table, err := gen.Build(cmd.Context(), src, commands.MovableKeyCommands())
			if err != nil {
				return err
			}
			return gen.WriteFile(cfg.Output.Path, table)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "TOML configuration file")
	cmd.Flags().StringVar(&addr, "addr", "", "Server address, overrides the configuration")
	cmd.Flags().StringVar(&out, "out", "", "Output file, overrides the configuration")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Read a saved COMMAND reply instead of asking a server")
	return cmd
}
