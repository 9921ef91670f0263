package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storyreel/internal/align"
	"storyreel/internal/allocate"
	"storyreel/internal/assemble"
	"storyreel/internal/collect"
	"storyreel/internal/config"
	"storyreel/internal/narrate"
	"storyreel/internal/queue"
	"storyreel/internal/reconcile"
	"storyreel/internal/stage"
)

// pipelineStage binds a ready status to the handler that consumes it.
type pipelineStage struct {
	name             string
	readyStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
	handler          stage.Handler
}

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration

	heartbeat *HeartbeatMonitor

	stages      map[queue.Status]pipelineStage
	statusOrder []queue.Status

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item
}

// NewManager constructs a workflow manager with the standard stage set.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	m := newManager(cfg, store, logger)
	m.register("collect", queue.StatusPending, queue.StatusCollecting, queue.StatusSorted,
		collect.NewCollector(cfg, store, logger))
	m.register("allocate", queue.StatusSorted, queue.StatusAllocating, queue.StatusAllocated,
		allocate.NewAllocator(cfg, store, logger))
	m.register("narrate", queue.StatusAllocated, queue.StatusNarrating, queue.StatusNarrated,
		narrate.NewNarrator(cfg, store, logger))
	m.register("reconcile", queue.StatusNarrated, queue.StatusReconciling, queue.StatusReconciled,
		reconcile.NewReconciler(cfg, store, logger))
	m.register("align", queue.StatusReconciled, queue.StatusAligning, queue.StatusAligned,
		align.NewAligner(cfg, store, logger))
	m.register("assemble", queue.StatusAligned, queue.StatusAssembling, queue.StatusCompleted,
		assemble.NewAssembler(cfg, store, logger))
	return m
}

// NewManagerWithStages constructs a manager with an explicit stage set (used
// in tests).
func NewManagerWithStages(cfg *config.Config, store *queue.Store, logger *slog.Logger, register func(add func(name string, ready, processing, done queue.Status, handler stage.Handler))) *Manager {
	m := newManager(cfg, store, logger)
	register(func(name string, ready, processing, done queue.Status, handler stage.Handler) {
		m.register(name, ready, processing, done, handler)
	})
	return m
}

func newManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
		stages: make(map[queue.Status]pipelineStage),
	}
}

func (m *Manager) register(name string, ready, processing, done queue.Status, handler stage.Handler) {
	m.stages[ready] = pipelineStage{
		name:             name,
		readyStatus:      ready,
		processingStatus: processing,
		doneStatus:       done,
		handler:          handler,
	}
	m.statusOrder = append(m.statusOrder, ready)
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// LastError returns the most recent loop-level error.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setLastItem(item *queue.Item) {
	m.mu.Lock()
	copied := *item
	m.lastItem = &copied
	m.mu.Unlock()
}

// LastItem returns a copy of the most recently processed item.
func (m *Manager) LastItem() *queue.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastItem == nil {
		return nil
	}
	copied := *m.lastItem
	return &copied
}

// Running reports whether the worker loop is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}
