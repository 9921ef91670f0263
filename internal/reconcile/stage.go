package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"storyreel/internal/allocate"
	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/media"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/queue"
	"storyreel/internal/services"
	"storyreel/internal/stage"
	"storyreel/internal/timeline"
)

// Reconciler is the stage that turns the allocation plan and narration
// records into a fully reconciled timeline.
type Reconciler struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
}

// NewReconciler constructs the reconcile stage handler.
func NewReconciler(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Reconciler {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "reconcile"))
	}
	return &Reconciler{store: store, cfg: cfg, logger: stageLogger}
}

func (r *Reconciler) Prepare(ctx context.Context, item *queue.Item) error {
	if item.ProgressStage == "" {
		item.ProgressStage = "Reconciling"
	}
	item.ProgressMessage = "Reconciling durations"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	return nil
}

func (r *Reconciler) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)

	var plan allocate.Plan
	if err := stage.DecodeColumn(item.PlanJSON, "reconciling", "decode plan", "rerun allocation", &plan); err != nil {
		return err
	}
	var narrations []timeline.Narration
	if err := stage.DecodeColumn(item.NarrationJSON, "reconciling", "decode narration", "rerun narration", &narrations); err != nil {
		return err
	}
	audioByScene := make(map[int]timeline.Narration, len(narrations))
	for _, rec := range narrations {
		audioByScene[rec.SceneOrdinal] = rec
	}

	tolerance := r.cfg.Reconcile.SegmentToleranceSeconds
	segments := make([]timeline.Segment, 0, len(plan.Assignments))
	for _, assignment := range plan.Assignments {
		narration, ok := audioByScene[assignment.SceneOrdinal]
		if !ok {
			// An image scene can run silent at the configured still
			// duration; video footage has no defined length without its
			// narration.
			if assignment.Asset.Kind == media.KindImage && r.cfg.Reconcile.DefaultImageSeconds > 0 {
				logger.Warn("scene has no narration, holding still for the default duration",
					logging.Int("scene", assignment.SceneOrdinal),
					logging.Float64("seconds", r.cfg.Reconcile.DefaultImageSeconds),
				)
				segments = append(segments, timeline.Segment{
					SceneOrdinal: assignment.SceneOrdinal,
					AssetPath:    assignment.Asset.Path,
					AssetKind:    assignment.Asset.Kind,
					AudioSeconds: r.cfg.Reconcile.DefaultImageSeconds,
					Action:       ActionNone,
				})
				continue
			}
			return services.Wrap(services.ErrValidation, "reconciling", "pair narration",
				fmt.Sprintf("Scene %d has no narration record; rerun narration", assignment.SceneOrdinal), nil)
		}
		segment, err := r.buildSegment(ctx, logger, assignment, narration, tolerance)
		if err != nil {
			return err
		}
		segments = append(segments, segment)
	}

	total := timeline.AssignOffsets(segments)
	if err := timeline.Validate(segments); err != nil {
		return services.Wrap(services.ErrValidation, "reconciling", "validate timeline",
			"Reconciled timeline is inconsistent", err)
	}

	segmentsJSON, err := stage.EncodeColumn(segments)
	if err != nil {
		return services.Wrap(services.ErrTransient, "reconciling", "encode timeline", "Failed to persist timeline", err)
	}
	item.SegmentsJSON = segmentsJSON

	item.ProgressMessage = fmt.Sprintf("Timeline reconciled: %d segments, %.1fs", len(segments), total)
	item.ProgressPercent = 100
	logger.Info("reconciliation completed",
		logging.Int("segments", len(segments)),
		logging.Float64("total_seconds", total),
	)
	return nil
}

// buildSegment decides the padding instruction and trim window for one
// scene. Images always match their narration exactly; video footage is
// compared against the narration and frozen or audio-padded, never cut short
// of its own length or sped up.
func (r *Reconciler) buildSegment(ctx context.Context, logger *slog.Logger, assignment allocate.Assignment, narration timeline.Narration, tolerance float64) (timeline.Segment, error) {
	segment := timeline.Segment{
		SceneOrdinal: assignment.SceneOrdinal,
		AssetPath:    assignment.Asset.Path,
		AssetKind:    assignment.Asset.Kind,
		AudioPath:    narration.AudioPath,
		AudioSeconds: narration.Seconds,
		Action:       ActionNone,
	}
	if segment.AudioSeconds <= 0 {
		return timeline.Segment{}, services.Wrap(services.ErrValidation, "reconciling", "pair narration",
			fmt.Sprintf("Scene %d narration has no duration", assignment.SceneOrdinal), nil)
	}
	if assignment.Asset.Kind == media.KindImage {
		return segment, nil
	}

	footage, err := ffprobe.Duration(ctx, r.cfg.FFmpeg.FFprobeBinary, assignment.Asset.Path)
	if err != nil {
		// Recoverable: assemble the scene without a padding instruction.
		logger.Warn("footage duration unknown, skipping reconciliation",
			logging.String("asset", assignment.Asset.Path),
			logging.Error(err),
		)
		segment.TrimSeconds = segment.AudioSeconds
		return segment, nil
	}

	decision := Decide(footage, segment.AudioSeconds, tolerance)
	segment.Action = decision.Action
	segment.CorrectionSeconds = decision.Seconds
	switch decision.Action {
	case ActionFreezeVideo:
		segment.TrimSeconds = footage
	case ActionPadAudio:
		segment.TrimSeconds = footage
	default:
		segment.TrimSeconds = math.Min(footage, segment.AudioSeconds)
	}

	if decision.Action != ActionNone {
		logger.Info("segment reconciled",
			logging.Int("scene", assignment.SceneOrdinal),
			logging.String("action", string(decision.Action)),
			logging.Float64("seconds", decision.Seconds),
		)
	}
	return segment, nil
}

func (r *Reconciler) HealthCheck(ctx context.Context) stage.Health {
	return stage.BinaryHealth("reconcile", r.cfg.FFmpeg.FFprobeBinary)
}
