package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/queue"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job's details and artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("job %d not found", id)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Job %d: %s\n", item.ID, item.Title)
				fmt.Fprintf(out, "  Project:   %s\n", item.ProjectDir)
				fmt.Fprintf(out, "  Status:    %s\n", item.Status.Display())
				fmt.Fprintf(out, "  Progress:  %s\n", formatProgress(item))
				fmt.Fprintf(out, "  Created:   %s\n", item.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "  Updated:   %s\n", item.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "  Review:    %s\n", yesNo(item.NeedsReview))
				if item.ReviewReason != "" {
					fmt.Fprintf(out, "  Reason:    %s\n", item.ReviewReason)
				}
				if item.ErrorMessage != "" {
					fmt.Fprintf(out, "  Error:     %s\n", item.ErrorMessage)
				}
				if item.CaptionFile != "" {
					fmt.Fprintf(out, "  Captions:  %s\n", item.CaptionFile)
				}
				if item.OutputFile != "" {
					fmt.Fprintf(out, "  Output:    %s\n", item.OutputFile)
				}
				return nil
			})
		},
	}
}
