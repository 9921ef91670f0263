package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/services"
)

// stageLabels are the operator-facing names for processing statuses.
var stageLabels = map[queue.Status]string{
	queue.StatusCollecting:  "Collecting",
	queue.StatusAllocating:  "Allocating",
	queue.StatusNarrating:   "Narrating",
	queue.StatusReconciling: "Reconciling",
	queue.StatusAligning:    "Aligning",
	queue.StatusAssembling:  "Assembling",
	queue.StatusCompleted:   "Completed",
}

var statusCaser = cases.Title(language.English)

func deriveStageLabel(status queue.Status) string {
	if label, ok := stageLabels[status]; ok {
		return label
	}
	return statusCaser.String(status.Display())
}

func (m *Manager) processItem(ctx context.Context, logger *slog.Logger, item *queue.Item) error {
	pipeline, ok := m.stages[item.Status]
	if !ok {
		logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.waitForItemOrShutdown(ctx)
		return nil
	}

	stageCtx := services.WithJobID(ctx, item.ID)
	stageCtx = services.WithStage(stageCtx, pipeline.name)
	stageCtx = services.WithRequestID(stageCtx, uuid.NewString())
	stageLogger := logging.WithContext(stageCtx, logger)

	if err := m.transitionToProcessing(stageCtx, pipeline, item); err != nil {
		stageLogger.Error("failed to transition item to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, pipeline, item)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, pipeline pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(pipeline.processingStatus)),
		logging.String("title", strings.TrimSpace(item.Title)),
		logging.String("project_dir", strings.TrimSpace(item.ProjectDir)),
	)

	if err := pipeline.handler.Prepare(ctx, item); err != nil {
		m.handleStageFailure(ctx, pipeline.name, item, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, pipeline, item)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) && ctx.Err() != nil {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, pipeline.name, item, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if item.Status == pipeline.processingStatus || item.Status == "" {
		item.Status = pipeline.doneStatus
	}
	item.LastHeartbeat = nil
	if item.Status == queue.StatusCompleted {
		item.ProgressStage = deriveStageLabel(queue.StatusCompleted)
		if item.ProgressPercent < 100 {
			item.ProgressPercent = 100
		}
		if strings.TrimSpace(item.ProgressMessage) == "" {
			item.ProgressMessage = deriveStageLabel(queue.StatusCompleted)
		}
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.String("progress_message", strings.TrimSpace(item.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastItem(item)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, pipeline pipelineStage, item *queue.Item) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, item.ID)

	execErr := pipeline.handler.Execute(ctx, item)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) transitionToProcessing(ctx context.Context, pipeline pipelineStage, item *queue.Item) error {
	now := time.Now().UTC()
	item.Status = pipeline.processingStatus
	item.ProgressStage = deriveStageLabel(pipeline.processingStatus)
	item.ProgressMessage = fmt.Sprintf("%s started", item.ProgressStage)
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	item.LastHeartbeat = &now

	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastItem(item)
	return nil
}
