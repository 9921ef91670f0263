package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an assembly job.
type Status string

const (
	StatusPending     Status = "pending"
	StatusCollecting  Status = "collecting"
	StatusSorted      Status = "sorted"
	StatusAllocating  Status = "allocating"
	StatusAllocated   Status = "allocated"
	StatusNarrating   Status = "narrating"
	StatusNarrated    Status = "narrated"
	StatusReconciling Status = "reconciling"
	StatusReconciled  Status = "reconciled"
	StatusAligning    Status = "aligning"
	StatusAligned     Status = "aligned"
	StatusAssembling  Status = "assembling"
	StatusCompleted   Status = "completed"
	StatusReview      Status = "review"
	StatusFailed      Status = "failed"
)

// DaemonStopReason is the error message set when jobs are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusCollecting,
	StatusSorted,
	StatusAllocating,
	StatusAllocated,
	StatusNarrating,
	StatusNarrated,
	StatusReconciling,
	StatusReconciled,
	StatusAligning,
	StatusAligned,
	StatusAssembling,
	StatusCompleted,
	StatusReview,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusCollecting:  {},
	StatusAllocating:  {},
	StatusNarrating:   {},
	StatusReconciling: {},
	StatusAligning:    {},
	StatusAssembling:  {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions map each processing status back to the status it
// was claimed from, so interrupted jobs can be retried.
var stageRollbackTransitions = []statusTransition{
	{from: StatusCollecting, to: StatusPending},
	{from: StatusAllocating, to: StatusSorted},
	{from: StatusNarrating, to: StatusAllocated},
	{from: StatusReconciling, to: StatusNarrated},
	{from: StatusAligning, to: StatusReconciled},
	{from: StatusAssembling, to: StatusAligned},
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Review     int
	Failed     int
	Completed  int
}

// Item represents an assembly job persisted in SQLite.
type Item struct {
	ID              int64
	ProjectDir      string
	Title           string
	Status          Status
	AssetsJSON      string
	ScriptJSON      string
	PlanJSON        string
	NarrationJSON   string
	SegmentsJSON    string
	CaptionFile     string
	OutputFile      string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	LastHeartbeat   *time.Time
	NeedsReview     bool
	ReviewReason    string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus validates a user-supplied status string.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// IsProcessing reports whether the status marks a job actively claimed by a stage.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// IsTerminal reports whether the status ends the pipeline for a job.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusReview
}

// Display returns a human-readable label for tables and progress output.
func (s Status) Display() string {
	return strings.ReplaceAll(string(s), "_", " ")
}
