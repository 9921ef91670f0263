// Package assemble renders per-scene clips from the reconciled timeline,
// concatenates them, and muxes narration and captions into the final output
// file in the project directory.
package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"storyreel/internal/config"
	"storyreel/internal/fileutil"
	"storyreel/internal/logging"
	"storyreel/internal/media"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/queue"
	"storyreel/internal/reconcile"
	"storyreel/internal/services"
	"storyreel/internal/services/ffmpeg"
	"storyreel/internal/stage"
	"storyreel/internal/staging"
	"storyreel/internal/timeline"
)

// Assembler is the final pipeline stage.
type Assembler struct {
	store      *queue.Store
	cfg        *config.Config
	logger     *slog.Logger
	transcoder ffmpeg.Client
}

// NewAssembler constructs the assemble stage handler using default dependencies.
func NewAssembler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Assembler {
	client := ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpeg.FFmpegBinary))
	return NewAssemblerWithDependencies(cfg, store, logger, client)
}

// NewAssemblerWithDependencies allows injecting the transcoder (used in tests).
func NewAssemblerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, transcoder ffmpeg.Client) *Assembler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "assemble"))
	}
	return &Assembler{store: store, cfg: cfg, logger: stageLogger, transcoder: transcoder}
}

func (a *Assembler) Prepare(ctx context.Context, item *queue.Item) error {
	if item.ProgressStage == "" {
		item.ProgressStage = "Assembling"
	}
	item.ProgressMessage = "Rendering scene clips"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (a *Assembler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, a.logger)

	var segments []timeline.Segment
	if err := stage.DecodeColumn(item.SegmentsJSON, "assembling", "decode timeline", "rerun reconciliation", &segments); err != nil {
		return err
	}
	if err := timeline.Validate(segments); err != nil {
		return services.Wrap(services.ErrValidation, "assembling", "validate timeline",
			"Timeline is not assemblable; rerun reconciliation", err)
	}

	ws := staging.ItemWorkspace(a.cfg.Paths.StagingDir, item.ID, item.Title)
	if err := ws.Ensure(); err != nil {
		return services.Wrap(services.ErrTransient, "assembling", "prepare staging", "Failed to create staging workspace", err)
	}
	settings := a.settings()

	clipPaths := make([]string, 0, len(segments))
	for i, segment := range segments {
		if staging.CancelRequested(item.ProjectDir) {
			return services.Wrap(services.ErrValidation, "assembling", "render clip",
				"Assembly cancelled by operator", context.Canceled)
		}
		clipPath := ws.SceneClip(segment.SceneOrdinal)
		if err := a.renderClip(ctx, segment, clipPath, settings); err != nil {
			return services.Wrap(services.ErrExternalTool, "assembling", "render clip",
				fmt.Sprintf("Transcoder failed on scene %d", segment.SceneOrdinal), err)
		}
		clipPaths = append(clipPaths, clipPath)
		a.updateProgress(ctx, item, fmt.Sprintf("Rendered scene %d", segment.SceneOrdinal),
			float64(i+1)/float64(len(segments))*70)
	}

	// Single-scene runs skip concatenation entirely.
	combined := clipPaths[0]
	if len(clipPaths) > 1 {
		a.updateProgress(ctx, item, "Concatenating scenes", 75)
		combined = ws.ConcatOutput()
		if err := a.transcoder.Concat(ctx, clipPaths, combined); err != nil {
			return services.Wrap(services.ErrExternalTool, "assembling", "concatenate clips",
				"Transcoder failed while joining scene clips", err)
		}
	}

	outputPath := staging.FinalOutput(item.ProjectDir)
	if a.cfg.Captions.BurnIn && item.CaptionFile != "" {
		a.updateProgress(ctx, item, "Burning captions", 85)
		err := a.transcoder.BurnCaptions(ctx, ffmpeg.BurnRequest{
			VideoPath:   combined,
			CaptionPath: item.CaptionFile,
			OutputPath:  outputPath,
			Settings:    settings,
		})
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "assembling", "burn captions",
				"Transcoder failed while burning captions", err)
		}
	} else {
		a.updateProgress(ctx, item, "Publishing output", 85)
		if err := fileutil.CopyVerified(combined, outputPath); err != nil {
			return services.Wrap(services.ErrTransient, "assembling", "publish output",
				"Failed to place final video in project directory", err)
		}
	}
	item.OutputFile = outputPath

	a.verifyTrackDuration(ctx, logger, outputPath, segments)

	item.ProgressMessage = fmt.Sprintf("Assembled %d scenes", len(segments))
	item.ProgressPercent = 100
	logger.Info("assembly completed",
		logging.Int("scenes", len(segments)),
		logging.String("output_file", outputPath),
	)
	return nil
}

func (a *Assembler) renderClip(ctx context.Context, segment timeline.Segment, clipPath string, settings ffmpeg.Settings) error {
	if segment.AssetKind == media.KindImage {
		return a.transcoder.BuildImageClip(ctx, ffmpeg.ImageClipRequest{
			ImagePath:  segment.AssetPath,
			AudioPath:  segment.AudioPath,
			Duration:   segment.Seconds(),
			OutputPath: clipPath,
			Settings:   settings,
		})
	}

	req := ffmpeg.VideoClipRequest{
		VideoPath:   segment.AssetPath,
		AudioPath:   segment.AudioPath,
		TrimSeconds: segment.TrimSeconds,
		OutputPath:  clipPath,
		Settings:    settings,
	}
	switch segment.Action {
	case reconcile.ActionFreezeVideo:
		req.FreezeSeconds = segment.CorrectionSeconds
	case reconcile.ActionPadAudio:
		req.PadSeconds = segment.CorrectionSeconds
	}
	return a.transcoder.BuildVideoClip(ctx, req)
}

// verifyTrackDuration compares the final file against the timeline total.
// A mismatch past the track tolerance is worth surfacing but not fatal.
func (a *Assembler) verifyTrackDuration(ctx context.Context, logger *slog.Logger, outputPath string, segments []timeline.Segment) {
	expected := 0.0
	for _, segment := range segments {
		expected += segment.Seconds()
	}
	actual, err := ffprobe.Duration(ctx, a.cfg.FFmpeg.FFprobeBinary, outputPath)
	if err != nil {
		logger.Warn("could not verify output duration", logging.Error(err))
		return
	}
	if diff := math.Abs(actual - expected); diff > a.cfg.Reconcile.TrackToleranceSeconds {
		logger.Warn("output duration drifts from timeline",
			logging.Float64("expected_seconds", expected),
			logging.Float64("actual_seconds", actual),
			logging.Float64("drift_seconds", diff),
		)
	}
}

func (a *Assembler) settings() ffmpeg.Settings {
	return ffmpeg.Settings{
		Width:        a.cfg.Output.Width,
		Height:       a.cfg.Output.Height,
		FPS:          a.cfg.Output.FPS,
		VideoCodec:   a.cfg.Output.VideoCodec,
		Preset:       a.cfg.Output.Preset,
		CRF:          a.cfg.Output.CRF,
		AudioCodec:   a.cfg.Output.AudioCodec,
		AudioBitrate: a.cfg.Output.AudioBitrate,
	}
}

func (a *Assembler) HealthCheck(ctx context.Context) stage.Health {
	return stage.BinaryHealth("assemble", a.cfg.FFmpeg.FFmpegBinary)
}

func (a *Assembler) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	item.ProgressMessage = message
	item.ProgressPercent = percent
	if err := a.store.Update(ctx, item); err != nil && a.logger != nil {
		a.logger.Warn("progress update failed", logging.Error(err))
	}
}
