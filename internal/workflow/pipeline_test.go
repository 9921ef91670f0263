package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/align"
	"storyreel/internal/allocate"
	"storyreel/internal/assemble"
	"storyreel/internal/collect"
	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/narrate"
	"storyreel/internal/queue"
	"storyreel/internal/reconcile"
	"storyreel/internal/services/edgetts"
	"storyreel/internal/services/ffmpeg"
	"storyreel/internal/services/whisper"
	"storyreel/internal/stage"
	"storyreel/internal/testsupport"
	"storyreel/internal/timeline"
)

const pipelineStory = `{
  "title": "Harbor Lights",
  "scenes": [
    {"scene_number": 1, "narration": "The harbor woke before dawn."},
    {"scene_number": 2, "narration": "Boats slipped past the breakwater."},
    {"scene_number": 3, "narration": "Nets came up heavy with silver."},
    {"scene_number": 4, "narration": "Gulls fought over the scraps."},
    {"scene_number": 5, "narration": "By noon the docks fell quiet."}
  ]
}`

type pipelineTTS struct{}

func (pipelineTTS) Synthesize(ctx context.Context, req edgetts.Request) error {
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(req.OutputPath, []byte("mp3"), 0o644)
}

type pipelineRecognizer struct{}

func (pipelineRecognizer) Transcribe(ctx context.Context, audioPath, outputDir string) ([]whisper.Segment, error) {
	return []whisper.Segment{{Start: 0.2, End: 3.8, Text: "recognized words"}}, nil
}

type pipelineTranscoder struct {
	imageClips int
	videoClips int
	concats    [][]string
	burned     bool
}

func (p *pipelineTranscoder) write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("clip"), 0o644)
}

func (p *pipelineTranscoder) BuildImageClip(ctx context.Context, req ffmpeg.ImageClipRequest) error {
	p.imageClips++
	return p.write(req.OutputPath)
}

func (p *pipelineTranscoder) BuildVideoClip(ctx context.Context, req ffmpeg.VideoClipRequest) error {
	p.videoClips++
	return p.write(req.OutputPath)
}

func (p *pipelineTranscoder) Concat(ctx context.Context, clipPaths []string, outputPath string) error {
	p.concats = append(p.concats, clipPaths)
	return p.write(outputPath)
}

func (p *pipelineTranscoder) BurnCaptions(ctx context.Context, req ffmpeg.BurnRequest) error {
	p.burned = true
	return p.write(req.OutputPath)
}

func stubPipelineProbe(t *testing.T, cfg *config.Config) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	body := "#!/bin/sh\ncat <<'EOF'\n{\"format\":{\"duration\":\"4.000000\"},\"streams\":[]}\nEOF\n"
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write probe stub: %v", err)
	}
	cfg.FFmpeg.FFprobeBinary = path
}

// Runs a five scene, three asset project through every stage with the
// external collaborators faked out.
func TestPipelineEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	stubPipelineProbe(t, cfg)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	projectDir := t.TempDir()
	for i := 1; i <= 3; i++ {
		testsupport.WriteFile(t, filepath.Join(projectDir, fmt.Sprintf("scene_%02d.mp4", i)), 32)
	}
	if err := os.WriteFile(filepath.Join(projectDir, "story.json"), []byte(pipelineStory), 0o644); err != nil {
		t.Fatalf("write story: %v", err)
	}

	transcoder := &pipelineTranscoder{}
	manager := NewManagerWithStages(cfg, store, logger, func(add func(name string, ready, processing, done queue.Status, handler stage.Handler)) {
		add("collect", queue.StatusPending, queue.StatusCollecting, queue.StatusSorted,
			collect.NewCollector(cfg, store, logger))
		add("allocate", queue.StatusSorted, queue.StatusAllocating, queue.StatusAllocated,
			allocate.NewAllocator(cfg, store, logger))
		add("narrate", queue.StatusAllocated, queue.StatusNarrating, queue.StatusNarrated,
			narrate.NewNarratorWithDependencies(cfg, store, logger, pipelineTTS{}))
		add("reconcile", queue.StatusNarrated, queue.StatusReconciling, queue.StatusReconciled,
			reconcile.NewReconciler(cfg, store, logger))
		add("align", queue.StatusReconciled, queue.StatusAligning, queue.StatusAligned,
			align.NewAlignerWithDependencies(cfg, store, logger, pipelineRecognizer{}))
		add("assemble", queue.StatusAligned, queue.StatusAssembling, queue.StatusCompleted,
			assemble.NewAssemblerWithDependencies(cfg, store, logger, transcoder))
	})

	item := testsupport.NewProject(t, store, projectDir)
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	finished := waitForStatus(t, store, item.ID, queue.StatusCompleted)

	// Remainder-first allocation: the first two assets carry two scenes each.
	var plan allocate.Plan
	if err := json.Unmarshal([]byte(finished.PlanJSON), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	wantAssets := []string{"scene_01.mp4", "scene_01.mp4", "scene_02.mp4", "scene_02.mp4", "scene_03.mp4"}
	if len(plan.Assignments) != len(wantAssets) {
		t.Fatalf("assignments = %d, want %d", len(plan.Assignments), len(wantAssets))
	}
	for i, assignment := range plan.Assignments {
		if got := filepath.Base(assignment.Asset.Path); got != wantAssets[i] {
			t.Errorf("scene %d asset = %s, want %s", assignment.SceneOrdinal, got, wantAssets[i])
		}
	}

	var segments []timeline.Segment
	if err := json.Unmarshal([]byte(finished.SegmentsJSON), &segments); err != nil {
		t.Fatalf("decode segments: %v", err)
	}
	if len(segments) != 5 {
		t.Fatalf("segments = %d, want 5", len(segments))
	}
	total := segments[len(segments)-1].StartOffset + segments[len(segments)-1].Seconds()
	if total != 20 {
		t.Errorf("timeline total = %v, want 20", total)
	}

	// Caption text is the script's own sentences, not the recognizer output.
	captions, err := os.ReadFile(finished.CaptionFile)
	if err != nil {
		t.Fatalf("read captions: %v", err)
	}
	var cueLines int
	for _, line := range strings.Split(string(captions), "\n") {
		if strings.HasPrefix(line, "Dialogue:") {
			cueLines++
		}
	}
	if cueLines != 5 {
		t.Errorf("caption cues = %d, want 5", cueLines)
	}
	if !strings.Contains(string(captions), "Nets came up heavy with silver.") {
		t.Error("captions missing script sentence")
	}
	if strings.Contains(string(captions), "recognized words") {
		t.Error("captions leaked recognizer transcription")
	}

	if transcoder.videoClips != 5 {
		t.Errorf("video clips = %d, want 5", transcoder.videoClips)
	}
	if transcoder.imageClips != 0 {
		t.Errorf("image clips = %d, want 0", transcoder.imageClips)
	}
	if len(transcoder.concats) != 1 || len(transcoder.concats[0]) != 5 {
		t.Errorf("concat calls = %v", transcoder.concats)
	}
	if !transcoder.burned {
		t.Error("captions were not burned in")
	}
	if _, err := os.Stat(finished.OutputFile); err != nil {
		t.Errorf("final output missing: %v", err)
	}
}
