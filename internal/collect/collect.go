// Package collect discovers a project's visual assets and narration script,
// orders the assets by their derived sequence keys, and persists both for the
// downstream stages.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/media"
	"storyreel/internal/queue"
	"storyreel/internal/script"
	"storyreel/internal/services"
	"storyreel/internal/stage"
	"storyreel/internal/staging"
)

// Collector is the first pipeline stage.
type Collector struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewCollector constructs the collect stage handler.
func NewCollector(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Collector {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "collect"))
	}
	return &Collector{store: store, cfg: cfg, logger: stageLogger}
}

func (c *Collector) Prepare(ctx context.Context, item *queue.Item) error {
	if item.ProgressStage == "" {
		item.ProgressStage = "Collecting"
	}
	item.ProgressMessage = "Scanning project directory"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (c *Collector) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("collecting project inputs", logging.String("project_dir", item.ProjectDir))

	assets, err := media.Scan(item.ProjectDir)
	if err != nil {
		return services.Wrap(services.ErrValidation, "collecting", "scan assets",
			"Project directory could not be read; check the path and permissions", err)
	}
	if len(assets) == 0 {
		return services.Wrap(services.ErrValidation, "collecting", "scan assets",
			fmt.Sprintf("No visual assets found in %s; add images or videos before assembling", item.ProjectDir), nil)
	}
	media.Sort(assets)

	c.updateProgress(ctx, item, "Loading story script", 40)
	story, err := script.Load(item.ProjectDir)
	if err != nil {
		return services.Wrap(services.ErrValidation, "collecting", "load script",
			"Story script missing or unreadable; a *story*.json with scenes is required", err)
	}

	assetsJSON, err := stage.EncodeColumn(assets)
	if err != nil {
		return services.Wrap(services.ErrTransient, "collecting", "encode assets", "Failed to persist asset list", err)
	}
	scriptJSON, err := stage.EncodeColumn(story)
	if err != nil {
		return services.Wrap(services.ErrTransient, "collecting", "encode script", "Failed to persist script", err)
	}
	item.AssetsJSON = assetsJSON
	item.ScriptJSON = scriptJSON
	if title := strings.TrimSpace(story.Title); title != "" {
		item.Title = title
	}

	c.updateProgress(ctx, item, "Writing narration reference", 80)
	ws := staging.ItemWorkspace(c.cfg.Paths.StagingDir, item.ID, item.Title)
	if err := ws.Ensure(); err != nil {
		return services.Wrap(services.ErrTransient, "collecting", "prepare staging", "Failed to create staging workspace", err)
	}
	if err := os.WriteFile(ws.NarrationText(), []byte(story.FullText()+"\n"), 0o644); err != nil {
		logger.Warn("narration reference write failed", logging.Error(err))
	}

	item.ProgressMessage = fmt.Sprintf("Collected %d assets across %d scenes", len(assets), len(story.Scenes))
	item.ProgressPercent = 100
	logger.Info("collection completed",
		logging.Int("assets", len(assets)),
		logging.Int("scenes", len(story.Scenes)),
		logging.String("title", item.Title),
	)
	return nil
}

func (c *Collector) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(c.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy("collect", "staging directory not configured")
	}
	return stage.Healthy("collect")
}

func (c *Collector) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	item.ProgressMessage = message
	item.ProgressPercent = percent
	if err := c.store.Update(ctx, item); err != nil && c.logger != nil {
		c.logger.Warn("progress update failed", logging.Error(err))
	}
}
