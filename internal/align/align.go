// Package align places caption cues on the output timeline. When the speech
// recognizer is available its phrase timings anchor the original script
// sentences; otherwise cue timing is estimated from character counts. Either
// way the displayed text is always the script's own words.
package align

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/script"
	"storyreel/internal/services"
	"storyreel/internal/services/whisper"
	"storyreel/internal/stage"
	"storyreel/internal/staging"
	"storyreel/internal/subtitles"
	"storyreel/internal/timeline"
)

// Aligner is the caption alignment stage.
type Aligner struct {
	store      *queue.Store
	cfg        *config.Config
	logger     *slog.Logger
	recognizer whisper.Client
}

// NewAligner constructs the align stage handler using default dependencies.
func NewAligner(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Aligner {
	var recognizer whisper.Client
	if cfg.Whisper.Enabled {
		recognizer = whisper.NewCLI(
			whisper.WithBinary(cfg.Whisper.Binary),
			whisper.WithModel(cfg.Whisper.Model),
			whisper.WithLanguage(cfg.Whisper.Language),
		)
	}
	return NewAlignerWithDependencies(cfg, store, logger, recognizer)
}

// NewAlignerWithDependencies allows injecting the recognizer (used in tests).
// A nil recognizer forces text-estimation mode.
func NewAlignerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, recognizer whisper.Client) *Aligner {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "align"))
	}
	return &Aligner{store: store, cfg: cfg, logger: stageLogger, recognizer: recognizer}
}

func (a *Aligner) Prepare(ctx context.Context, item *queue.Item) error {
	if item.ProgressStage == "" {
		item.ProgressStage = "Aligning"
	}
	item.ProgressMessage = "Aligning captions"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (a *Aligner) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, a.logger)

	var story script.Script
	if err := stage.DecodeColumn(item.ScriptJSON, "aligning", "decode script", "rerun collection", &story); err != nil {
		return err
	}
	var segments []timeline.Segment
	if err := stage.DecodeColumn(item.SegmentsJSON, "aligning", "decode timeline", "rerun reconciliation", &segments); err != nil {
		return err
	}

	narrationByScene := make(map[int]*script.Scene, len(story.Scenes))
	for i := range story.Scenes {
		narrationByScene[story.Scenes[i].Ordinal] = &story.Scenes[i]
	}

	ws := staging.ItemWorkspace(a.cfg.Paths.StagingDir, item.ID, item.Title)
	if err := ws.Ensure(); err != nil {
		return services.Wrap(services.ErrTransient, "aligning", "prepare staging", "Failed to create staging workspace", err)
	}

	var cues []subtitles.Cue
	totalSeconds := 0.0
	for i, segment := range segments {
		totalSeconds = segment.StartOffset + segment.Seconds()
		scene, ok := narrationByScene[segment.SceneOrdinal]
		if !ok {
			continue
		}
		sceneCues := a.sceneCues(ctx, logger, ws, segment, scene.Narration)
		for _, cue := range sceneCues {
			cue.Start += segment.StartOffset
			cue.End += segment.StartOffset
			cues = append(cues, cue)
		}
		a.updateProgress(ctx, item, fmt.Sprintf("Aligned scene %d", segment.SceneOrdinal),
			float64(i+1)/float64(len(segments))*90)
	}

	cues = subtitles.Normalize(cues, totalSeconds)
	if len(cues) == 0 {
		// Assembly continues without captions.
		logger.Warn("no caption cues produced, output will be caption free")
		item.CaptionFile = ""
		item.ProgressMessage = "No captions generated"
		item.ProgressPercent = 100
		return nil
	}

	captionPath := ws.CaptionFile(a.cfg.Captions.Format)
	if err := a.writeCaptions(captionPath, cues); err != nil {
		return services.Wrap(services.ErrTransient, "aligning", "write captions", "Failed to write caption file", err)
	}
	item.CaptionFile = captionPath

	item.ProgressMessage = fmt.Sprintf("Built %d caption cues", len(cues))
	item.ProgressPercent = 100
	logger.Info("alignment completed",
		logging.Int("cues", len(cues)),
		logging.String("caption_file", captionPath),
	)
	return nil
}

// sceneCues builds scene-relative cues, preferring recognizer timings and
// falling back to text estimation when recognition is unavailable, fails, or
// returns nothing.
func (a *Aligner) sceneCues(ctx context.Context, logger *slog.Logger, ws staging.Workspace, segment timeline.Segment, narration string) []subtitles.Cue {
	sentences := script.SplitSentences(narration)

	// A silent segment has no audio to recognize; go straight to estimation.
	if a.recognizer != nil && segment.AudioPath != "" {
		recognized, err := a.transcribe(ctx, ws, segment.AudioPath)
		if err != nil {
			logger.Warn("recognition failed, falling back to text estimation",
				logging.Int("scene", segment.SceneOrdinal),
				logging.Error(err),
			)
		} else if len(recognized) > 0 {
			cues := subtitles.AlignSegments(recognized, sentences)
			return subtitles.Normalize(cues, segment.AudioSeconds)
		}
	}

	cues, err := subtitles.Estimate(narration, segment.AudioSeconds,
		a.cfg.Captions.MaxLineChars, a.cfg.Captions.MinRemainderChars)
	if err != nil {
		logger.Warn("caption estimation failed for scene",
			logging.Int("scene", segment.SceneOrdinal),
			logging.Error(err),
		)
		return nil
	}
	return cues
}

func (a *Aligner) transcribe(ctx context.Context, ws staging.Workspace, audioPath string) ([]subtitles.Segment, error) {
	if timeout := time.Duration(a.cfg.Whisper.TimeoutSeconds) * time.Second; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	recognized, err := a.recognizer.Transcribe(ctx, audioPath, ws.TranscriptDir())
	if err != nil {
		return nil, err
	}
	out := make([]subtitles.Segment, 0, len(recognized))
	for _, seg := range recognized {
		out = append(out, subtitles.Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	return out, nil
}

func (a *Aligner) writeCaptions(path string, cues []subtitles.Cue) error {
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return err
	}
	defer file.Close()

	if strings.EqualFold(strings.TrimSpace(a.cfg.Captions.Format), "ass") {
		return subtitles.WriteASS(file, cues, a.cfg.Output.Width, a.cfg.Output.Height)
	}
	return subtitles.WriteSRT(file, cues)
}

func (a *Aligner) HealthCheck(ctx context.Context) stage.Health {
	if a.cfg.Whisper.Enabled {
		return stage.BinaryHealth("align", a.cfg.Whisper.Binary)
	}
	return stage.Healthy("align")
}

func (a *Aligner) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	item.ProgressMessage = message
	item.ProgressPercent = percent
	if err := a.store.Update(ctx, item); err != nil && a.logger != nil {
		a.logger.Warn("progress update failed", logging.Error(err))
	}
}
