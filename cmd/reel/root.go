package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/reel/internal/config"
	"github.com/MrSnakeDoc/reel/internal/logger"
)

// commandContext loads configuration and the logger once per invocation.
type commandContext struct {
	cfg    *config.Config
	logger logger.Logger
}

func (c *commandContext) load() {
	if c.cfg != nil {
		return
	}
	c.cfg = config.Load()
	c.logger = logger.New(c.cfg.LogLevel, c.cfg.PrettyLog)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "reel",
		Short:         "Personal video library with local-state reconciliation",
		Long:          "reel serves a curated video library over HTTP. Configuration is read from REEL_* environment variables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
