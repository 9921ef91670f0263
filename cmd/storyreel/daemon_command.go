package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/workflow"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var oneShot bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Process queued assembly jobs until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				logger, err := ctx.newLogger()
				if err != nil {
					return err
				}

				// Only one worker may own a queue database.
				lock := flock.New(filepath.Join(cfg.Paths.LogDir, "storyreel.lock"))
				locked, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire daemon lock: %w", err)
				}
				if !locked {
					return fmt.Errorf("another storyreel daemon is already running")
				}
				defer lock.Unlock() //nolint:errcheck

				manager := workflow.NewManager(cfg, store, logger)
				if err := manager.Ready(cmd.Context()); err != nil {
					return err
				}

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if err := manager.Start(runCtx); err != nil {
					return err
				}
				logger.Info("daemon started", logging.String("queue_db", store.Path()))

				if oneShot {
					waitForIdle(runCtx, store)
				} else {
					<-runCtx.Done()
				}

				manager.Stop()
				manager.FailInFlight(cmd.Context(), queue.DaemonStopReason)
				logger.Info("daemon stopped")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&oneShot, "one-shot", false, "Exit once the queue has no runnable jobs")
	return cmd
}
