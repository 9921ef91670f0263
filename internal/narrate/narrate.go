// Package narrate synthesizes per-scene narration audio and measures every
// clip so later stages can reconcile durations against the visuals.
package narrate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/queue"
	"storyreel/internal/script"
	"storyreel/internal/services"
	"storyreel/internal/services/edgetts"
	"storyreel/internal/stage"
	"storyreel/internal/staging"
	"storyreel/internal/timeline"
)

// Narrator is the stage that turns script scenes into audio.
type Narrator struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	tts    edgetts.Client
}

// NewNarrator constructs the narrate stage handler using default dependencies.
func NewNarrator(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Narrator {
	client := edgetts.NewCLI(
		edgetts.WithBinary(cfg.TTS.Binary),
		edgetts.WithVoice(cfg.TTS.Voice),
		edgetts.WithRate(cfg.TTS.Rate),
	)
	return NewNarratorWithDependencies(cfg, store, logger, client)
}

// NewNarratorWithDependencies allows injecting the TTS client (used in tests).
func NewNarratorWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, tts edgetts.Client) *Narrator {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "narrate"))
	}
	return &Narrator{store: store, cfg: cfg, logger: stageLogger, tts: tts}
}

func (n *Narrator) Prepare(ctx context.Context, item *queue.Item) error {
	if item.ProgressStage == "" {
		item.ProgressStage = "Narrating"
	}
	item.ProgressMessage = "Synthesizing narration"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (n *Narrator) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, n.logger)

	var story script.Script
	if err := stage.DecodeColumn(item.ScriptJSON, "narrating", "decode script", "rerun collection", &story); err != nil {
		return err
	}
	if len(story.Scenes) == 0 {
		return services.Wrap(services.ErrValidation, "narrating", "decode script",
			"Script has no scenes to narrate", nil)
	}

	ws := staging.ItemWorkspace(n.cfg.Paths.StagingDir, item.ID, item.Title)
	if err := ws.Ensure(); err != nil {
		return services.Wrap(services.ErrTransient, "narrating", "prepare staging", "Failed to create staging workspace", err)
	}

	concurrency := n.cfg.TTS.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	timeout := time.Duration(n.cfg.TTS.TimeoutSeconds) * time.Second

	logger.Info("synthesizing narration",
		logging.Int("scenes", len(story.Scenes)),
		logging.Int("concurrency", concurrency),
		logging.String("voice", n.cfg.TTS.Voice),
	)

	var (
		mu   sync.Mutex
		done int
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	narrations := make([]timeline.Narration, len(story.Scenes))
	for i, scene := range story.Scenes {
		i, scene := i, scene
		group.Go(func() error {
			if staging.CancelRequested(item.ProjectDir) {
				return services.Wrap(services.ErrValidation, "narrating", "synthesize scene",
					"Assembly cancelled by operator", context.Canceled)
			}
			sceneCtx := groupCtx
			if timeout > 0 {
				var cancel context.CancelFunc
				sceneCtx, cancel = context.WithTimeout(groupCtx, timeout)
				defer cancel()
			}

			audioPath := ws.SceneAudio(scene.Ordinal)
			err := n.tts.Synthesize(sceneCtx, edgetts.Request{Text: scene.Narration, OutputPath: audioPath})
			if err != nil {
				return services.Wrap(services.ErrExternalTool, "narrating", "synthesize scene",
					fmt.Sprintf("Narration synthesis failed for scene %d", scene.Ordinal), err)
			}
			seconds, err := ffprobe.Duration(sceneCtx, n.cfg.FFmpeg.FFprobeBinary, audioPath)
			if err != nil {
				return services.Wrap(services.ErrExternalTool, "narrating", "measure narration",
					fmt.Sprintf("Could not measure narration duration for scene %d", scene.Ordinal), err)
			}
			narrations[i] = timeline.Narration{
				SceneOrdinal: scene.Ordinal,
				AudioPath:    audioPath,
				Seconds:      seconds,
			}

			// item is shared across workers; hold the lock for the whole
			// progress write.
			mu.Lock()
			done++
			n.updateProgress(ctx, item, fmt.Sprintf("Narrated scene %d", scene.Ordinal),
				float64(done)/float64(len(story.Scenes))*90)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	sort.Slice(narrations, func(i, j int) bool {
		return narrations[i].SceneOrdinal < narrations[j].SceneOrdinal
	})
	narrationJSON, err := stage.EncodeColumn(narrations)
	if err != nil {
		return services.Wrap(services.ErrTransient, "narrating", "encode narration", "Failed to persist narration records", err)
	}
	item.NarrationJSON = narrationJSON

	var total float64
	for _, rec := range narrations {
		total += rec.Seconds
	}
	item.ProgressMessage = fmt.Sprintf("Synthesized %.1fs of narration", total)
	item.ProgressPercent = 100
	logger.Info("narration completed",
		logging.Int("scenes", len(narrations)),
		logging.Float64("total_seconds", total),
	)
	return nil
}

func (n *Narrator) HealthCheck(ctx context.Context) stage.Health {
	return stage.BinaryHealth("narrate", n.cfg.TTS.Binary)
}

func (n *Narrator) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	item.ProgressMessage = message
	item.ProgressPercent = percent
	if err := n.store.Update(ctx, item); err != nil && n.logger != nil {
		n.logger.Warn("progress update failed", logging.Error(err))
	}
}
