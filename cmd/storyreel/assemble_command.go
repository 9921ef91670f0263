package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/queue"
)

func newAssembleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assemble <project-dir>",
		Short: "Queue a project directory for assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			projectDir, err = filepath.Abs(projectDir)
			if err != nil {
				return err
			}
			info, err := os.Stat(projectDir)
			if err != nil {
				return fmt.Errorf("project directory: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", projectDir)
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				if existing, err := store.FindByProjectDir(cmd.Context(), projectDir); err != nil {
					return err
				} else if existing != nil && !existing.Status.IsTerminal() {
					return fmt.Errorf("project already queued as job %d (%s)", existing.ID, existing.Status.Display())
				}

				item, err := store.NewProject(cmd.Context(), projectDir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %d: %s\n", item.ID, item.Title)
				fmt.Fprintln(cmd.OutOrStdout(), "Run `storyreel daemon` to process the queue.")
				return nil
			})
		},
	}
}
