package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storyreel/internal/queue"
)

// waitForIdle blocks until every queued job reaches a terminal status or the
// context is cancelled.
func waitForIdle(ctx context.Context, store *queue.Store) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		items, err := store.List(ctx)
		if err != nil {
			continue
		}
		active := false
		for _, item := range items {
			if !item.Status.IsTerminal() {
				active = true
				break
			}
		}
		if !active {
			return
		}
	}
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}

func formatProgress(item *queue.Item) string {
	if item.Status.IsTerminal() {
		return item.Status.Display()
	}
	if item.ProgressMessage != "" {
		return fmt.Sprintf("%3.0f%% %s", item.ProgressPercent, item.ProgressMessage)
	}
	return fmt.Sprintf("%3.0f%%", item.ProgressPercent)
}
