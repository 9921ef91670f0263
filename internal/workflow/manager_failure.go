package workflow

import (
	"context"
	"errors"
	"strings"

	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	logger := m.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logger).With(logging.String("component", "workflow-manager"))

	status := services.FailureStatus(stageErr)
	message := failureMessage(stageName, stageErr)

	item.Status = status
	item.ErrorMessage = message
	item.LastHeartbeat = nil
	if status == queue.StatusReview {
		item.NeedsReview = true
		item.ReviewReason = message
	}

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("resolved_status", string(status)),
		logging.String("error_message", message),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
	m.setLastItem(item)
}

func failureMessage(stageName string, stageErr error) string {
	if stageErr == nil {
		return stageName + " failed without error detail"
	}
	if message := strings.TrimSpace(stageErr.Error()); message != "" {
		return message
	}
	return stageName + " failed"
}
