package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/reel/internal/app"
	"github.com/MrSnakeDoc/reel/internal/store"
	"github.com/MrSnakeDoc/reel/internal/utils"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the reconciled library as an archive document",
		Long: "export loads the persisted library, reconciles it with the catalog and writes the archive JSON. " +
			"The file backend is exclusive, so stop a running server first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx.load()
			defer func() { _ = ctx.logger.Sync() }()

			sess, backend, err := app.NewSession(cmd.Context(), ctx.cfg, ctx.logger)
			if err != nil {
				return err
			}
			defer utils.CloseLogged(backend, "storage", ctx.logger)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer utils.Close(f)
				w = f
			}
			return store.WriteArchive(w, store.FromState(sess.View()), time.Now())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
