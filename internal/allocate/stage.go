package allocate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/media"
	"storyreel/internal/queue"
	"storyreel/internal/script"
	"storyreel/internal/services"
	"storyreel/internal/stage"
)

// Allocator is the stage that maps scenes onto sorted assets.
type Allocator struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewAllocator constructs the allocate stage handler.
func NewAllocator(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Allocator {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "allocate"))
	}
	return &Allocator{store: store, cfg: cfg, logger: stageLogger}
}

func (a *Allocator) Prepare(ctx context.Context, item *queue.Item) error {
	if item.ProgressStage == "" {
		item.ProgressStage = "Allocating"
	}
	item.ProgressMessage = "Mapping scenes to assets"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (a *Allocator) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, a.logger)

	var assets []media.Asset
	if err := stage.DecodeColumn(item.AssetsJSON, "allocating", "decode assets", "rerun collection", &assets); err != nil {
		return err
	}
	var story script.Script
	if err := stage.DecodeColumn(item.ScriptJSON, "allocating", "decode script", "rerun collection", &story); err != nil {
		return err
	}

	plan, err := Build(story.Scenes, assets)
	if err != nil {
		if errors.Is(err, ErrNoMedia) {
			return services.Wrap(services.ErrValidation, "allocating", "build plan",
				"Project has scenes but no usable visual assets", err)
		}
		return services.Wrap(services.ErrValidation, "allocating", "build plan",
			"Scene allocation failed; check the story script", err)
	}
	if plan.UnusedAssets > 0 {
		logger.Warn("surplus assets will not appear in the output",
			logging.Int("unused_assets", plan.UnusedAssets))
	}

	planJSON, err := stage.EncodeColumn(plan)
	if err != nil {
		return services.Wrap(services.ErrTransient, "allocating", "encode plan", "Failed to persist allocation plan", err)
	}
	item.PlanJSON = planJSON

	item.ProgressMessage = fmt.Sprintf("Allocated %d scenes across %d assets", len(plan.Assignments), len(assets)-plan.UnusedAssets)
	item.ProgressPercent = 100
	logger.Info("allocation completed",
		logging.Int("assignments", len(plan.Assignments)),
		logging.Int("unused_assets", plan.UnusedAssets),
	)
	return nil
}

func (a *Allocator) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("allocate")
}
