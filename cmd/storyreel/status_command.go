package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue totals and stage readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				summary, err := store.Summary(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Total", "Pending", "Processing", "Review", "Failed", "Completed"},
					[][]string{{
						strconv.Itoa(summary.Total),
						strconv.Itoa(summary.Pending),
						strconv.Itoa(summary.Processing),
						strconv.Itoa(summary.Review),
						strconv.Itoa(summary.Failed),
						strconv.Itoa(summary.Completed),
					}},
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
				))

				manager := workflow.NewManager(cfg, store, logging.NewNop())
				rows := make([][]string, 0, 6)
				for _, health := range manager.HealthChecks(cmd.Context()) {
					state := "ready"
					if !health.Ready {
						state = "not ready"
					}
					rows = append(rows, []string{health.Name, state, health.Detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Stage", "State", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}
