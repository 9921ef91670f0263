package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"storyreel/internal/allocate"
	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/media"
	"storyreel/internal/services"
	"storyreel/internal/testsupport"
	"storyreel/internal/timeline"
)

func writeProbeStub(t *testing.T, cfg *config.Config, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write probe stub: %v", err)
	}
	cfg.FFmpeg.FFprobeBinary = path
}

func encode(t *testing.T, value any) string {
	t.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func decodeSegments(t *testing.T, raw string) []timeline.Segment {
	t.Helper()
	var segments []timeline.Segment
	if err := json.Unmarshal([]byte(raw), &segments); err != nil {
		t.Fatalf("decode segments: %v", err)
	}
	return segments
}

func TestReconcilerFreezesShortFootage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeProbeStub(t, cfg, `cat <<'EOF'
{"format":{"duration":"4.000000"},"streams":[{"codec_type":"video"}]}
EOF`)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewProject(t, store, t.TempDir())
	item.PlanJSON = encode(t, allocate.Plan{Assignments: []allocate.Assignment{
		{SceneOrdinal: 1, Asset: media.Asset{Path: "/media/01.mp4", Kind: media.KindVideo}},
	}})
	item.NarrationJSON = encode(t, []timeline.Narration{
		{SceneOrdinal: 1, AudioPath: "/audio/scene_01.mp3", Seconds: 5},
	})

	reconciler := NewReconciler(cfg, store, logging.NewNop())
	if err := reconciler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	segments := decodeSegments(t, item.SegmentsJSON)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	seg := segments[0]
	if seg.Action != ActionFreezeVideo {
		t.Errorf("action = %q, want freeze_video", seg.Action)
	}
	if seg.CorrectionSeconds != 1 {
		t.Errorf("correction = %v, want 1", seg.CorrectionSeconds)
	}
	if seg.TrimSeconds != 4 {
		t.Errorf("trim = %v, want 4", seg.TrimSeconds)
	}
	if seg.Seconds() != 5 {
		t.Errorf("segment duration = %v, want 5", seg.Seconds())
	}
}

func TestReconcilerPadsShortNarration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeProbeStub(t, cfg, `cat <<'EOF'
{"format":{"duration":"8.000000"},"streams":[{"codec_type":"video"}]}
EOF`)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewProject(t, store, t.TempDir())
	item.PlanJSON = encode(t, allocate.Plan{Assignments: []allocate.Assignment{
		{SceneOrdinal: 1, Asset: media.Asset{Path: "/media/01.mp4", Kind: media.KindVideo}},
	}})
	item.NarrationJSON = encode(t, []timeline.Narration{
		{SceneOrdinal: 1, AudioPath: "/audio/scene_01.mp3", Seconds: 6},
	})

	reconciler := NewReconciler(cfg, store, logging.NewNop())
	if err := reconciler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	seg := decodeSegments(t, item.SegmentsJSON)[0]
	if seg.Action != ActionPadAudio {
		t.Errorf("action = %q, want pad_audio", seg.Action)
	}
	if seg.CorrectionSeconds != 2 {
		t.Errorf("correction = %v, want 2", seg.CorrectionSeconds)
	}
	if seg.TrimSeconds != 8 {
		t.Errorf("trim = %v, want 8", seg.TrimSeconds)
	}
	if seg.Seconds() != 8 {
		t.Errorf("segment duration = %v, want 8", seg.Seconds())
	}
}

func TestReconcilerAssignsOffsets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewProject(t, store, t.TempDir())
	item.PlanJSON = encode(t, allocate.Plan{Assignments: []allocate.Assignment{
		{SceneOrdinal: 1, Asset: media.Asset{Path: "/media/01.jpg", Kind: media.KindImage}},
		{SceneOrdinal: 2, Asset: media.Asset{Path: "/media/02.jpg", Kind: media.KindImage}},
	}})
	item.NarrationJSON = encode(t, []timeline.Narration{
		{SceneOrdinal: 1, AudioPath: "/audio/scene_01.mp3", Seconds: 3.5},
		{SceneOrdinal: 2, AudioPath: "/audio/scene_02.mp3", Seconds: 2},
	})

	reconciler := NewReconciler(cfg, store, logging.NewNop())
	if err := reconciler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	segments := decodeSegments(t, item.SegmentsJSON)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	for i, seg := range segments {
		if seg.Action != ActionNone {
			t.Errorf("segment %d action = %q, want none", i, seg.Action)
		}
	}
	if segments[0].StartOffset != 0 {
		t.Errorf("first offset = %v, want 0", segments[0].StartOffset)
	}
	if segments[1].StartOffset != 3.5 {
		t.Errorf("second offset = %v, want 3.5", segments[1].StartOffset)
	}
}

func TestReconcilerRecoversFromProbeFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeProbeStub(t, cfg, "echo 'probe failed' >&2\nexit 1")
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewProject(t, store, t.TempDir())
	item.PlanJSON = encode(t, allocate.Plan{Assignments: []allocate.Assignment{
		{SceneOrdinal: 1, Asset: media.Asset{Path: "/media/01.mp4", Kind: media.KindVideo}},
	}})
	item.NarrationJSON = encode(t, []timeline.Narration{
		{SceneOrdinal: 1, AudioPath: "/audio/scene_01.mp3", Seconds: 4.5},
	})

	reconciler := NewReconciler(cfg, store, logging.NewNop())
	if err := reconciler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	seg := decodeSegments(t, item.SegmentsJSON)[0]
	if seg.Action != ActionNone {
		t.Errorf("action = %q, want none", seg.Action)
	}
	if seg.TrimSeconds != 4.5 {
		t.Errorf("trim = %v, want narration length", seg.TrimSeconds)
	}
}

func TestReconcilerSilentImageUsesDefaultDuration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewProject(t, store, t.TempDir())
	item.PlanJSON = encode(t, allocate.Plan{Assignments: []allocate.Assignment{
		{SceneOrdinal: 1, Asset: media.Asset{Path: "/media/01.jpg", Kind: media.KindImage}},
		{SceneOrdinal: 2, Asset: media.Asset{Path: "/media/02.jpg", Kind: media.KindImage}},
	}})
	item.NarrationJSON = encode(t, []timeline.Narration{
		{SceneOrdinal: 1, AudioPath: "/audio/scene_01.mp3", Seconds: 3},
	})

	reconciler := NewReconciler(cfg, store, logging.NewNop())
	if err := reconciler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	segments := decodeSegments(t, item.SegmentsJSON)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	silent := segments[1]
	if silent.AudioPath != "" {
		t.Errorf("silent segment audio path = %q, want empty", silent.AudioPath)
	}
	if silent.AudioSeconds != cfg.Reconcile.DefaultImageSeconds {
		t.Errorf("silent segment duration = %v, want %v", silent.AudioSeconds, cfg.Reconcile.DefaultImageSeconds)
	}
	if silent.StartOffset != 3 {
		t.Errorf("silent segment offset = %v, want 3", silent.StartOffset)
	}
}

func TestReconcilerRequiresNarrationForVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewProject(t, store, t.TempDir())
	item.PlanJSON = encode(t, allocate.Plan{Assignments: []allocate.Assignment{
		{SceneOrdinal: 1, Asset: media.Asset{Path: "/media/01.jpg", Kind: media.KindImage}},
		{SceneOrdinal: 2, Asset: media.Asset{Path: "/media/02.mp4", Kind: media.KindVideo}},
	}})
	item.NarrationJSON = encode(t, []timeline.Narration{
		{SceneOrdinal: 1, AudioPath: "/audio/scene_01.mp3", Seconds: 3},
	})

	reconciler := NewReconciler(cfg, store, logging.NewNop())
	err := reconciler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
