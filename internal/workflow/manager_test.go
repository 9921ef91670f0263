package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/services"
	"storyreel/internal/stage"
	"storyreel/internal/testsupport"
)

type stubHandler struct {
	name    string
	execute func(ctx context.Context, item *queue.Item) error
}

func (s *stubHandler) Prepare(ctx context.Context, item *queue.Item) error { return nil }

func (s *stubHandler) Execute(ctx context.Context, item *queue.Item) error {
	if s.execute != nil {
		return s.execute(ctx, item)
	}
	return nil
}

func (s *stubHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(s.name)
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Item {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		item, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if item != nil && item.Status == want {
			return item
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("item %d never reached status %s", id, want)
	return nil
}

func TestManagerAdvancesThroughStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}
	manager := NewManagerWithStages(cfg, store, logging.NewNop(), func(add func(name string, ready, processing, done queue.Status, handler stage.Handler)) {
		add("collect", queue.StatusPending, queue.StatusCollecting, queue.StatusSorted,
			&stubHandler{name: "collect", execute: func(ctx context.Context, item *queue.Item) error {
				record("collect")
				item.AssetsJSON = `[]`
				return nil
			}})
		add("assemble", queue.StatusSorted, queue.StatusAssembling, queue.StatusCompleted,
			&stubHandler{name: "assemble", execute: func(ctx context.Context, item *queue.Item) error {
				record("assemble")
				item.OutputFile = "/out/final_video.mp4"
				return nil
			}})
	})

	item := testsupport.NewProject(t, store, t.TempDir())

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	finished := waitForStatus(t, store, item.ID, queue.StatusCompleted)
	if finished.OutputFile != "/out/final_video.mp4" {
		t.Errorf("output file = %q", finished.OutputFile)
	}
	if finished.ProgressPercent != 100 {
		t.Errorf("progress = %v, want 100", finished.ProgressPercent)
	}
	mu.Lock()
	if len(order) != 2 || order[0] != "collect" || order[1] != "assemble" {
		t.Errorf("stage order = %v", order)
	}
	mu.Unlock()
}

func TestManagerRoutesValidationFailureToReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := NewManagerWithStages(cfg, store, logging.NewNop(), func(add func(name string, ready, processing, done queue.Status, handler stage.Handler)) {
		add("collect", queue.StatusPending, queue.StatusCollecting, queue.StatusSorted,
			&stubHandler{name: "collect", execute: func(ctx context.Context, item *queue.Item) error {
				return services.Wrap(services.ErrValidation, "collecting", "scan assets", "No usable assets", nil)
			}})
	})

	item := testsupport.NewProject(t, store, t.TempDir())

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	failed := waitForStatus(t, store, item.ID, queue.StatusReview)
	if !failed.NeedsReview {
		t.Error("expected needs_review to be set")
	}
	if failed.ErrorMessage == "" {
		t.Error("expected error message")
	}
}

func TestManagerRoutesToolFailureToFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := NewManagerWithStages(cfg, store, logging.NewNop(), func(add func(name string, ready, processing, done queue.Status, handler stage.Handler)) {
		add("assemble", queue.StatusPending, queue.StatusAssembling, queue.StatusCompleted,
			&stubHandler{name: "assemble", execute: func(ctx context.Context, item *queue.Item) error {
				return services.Wrap(services.ErrExternalTool, "assembling", "render clip", "Transcoder failed", errors.New("exit status 1"))
			}})
	})

	item := testsupport.NewProject(t, store, t.TempDir())

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	failed := waitForStatus(t, store, item.ID, queue.StatusFailed)
	if failed.NeedsReview {
		t.Error("tool failures should not be flagged for review")
	}
}

func TestManagerStartRequiresStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := NewManagerWithStages(cfg, store, logging.NewNop(), func(func(string, queue.Status, queue.Status, queue.Status, stage.Handler)) {})
	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("expected error with no stages registered")
	}
}

func TestManagerReadyReportsUnhealthyStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	manager := NewManagerWithStages(cfg, store, logging.NewNop(), func(add func(name string, ready, processing, done queue.Status, handler stage.Handler)) {
		add("collect", queue.StatusPending, queue.StatusCollecting, queue.StatusSorted, &stubHandler{name: "collect"})
	})
	if err := manager.Ready(context.Background()); err != nil {
		t.Fatalf("Ready: %v", err)
	}
}
