package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var list bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale staging workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if list {
				workspaces, err := staging.ListWorkspaces(cfg.Paths.StagingDir)
				if err != nil {
					return err
				}
				if len(workspaces) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No staging workspaces.")
					return nil
				}
				rows := make([][]string, 0, len(workspaces))
				for _, ws := range workspaces {
					rows = append(rows, []string{
						ws.Name,
						ws.ModTime.Local().Format("2006-01-02 15:04"),
						fmt.Sprintf("%.1f MiB", float64(ws.Size)/(1024*1024)),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Workspace", "Modified", "Size"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
				return nil
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			result := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, olderThan, logger)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d workspace(s).\n", len(result.Removed))
			for _, failure := range result.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to remove %s: %v\n", failure.Path, failure.Err)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "Remove workspaces older than this")
	cmd.Flags().BoolVar(&list, "list", false, "List workspaces instead of removing them")
	return cmd
}
