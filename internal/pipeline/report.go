package pipeline

import (
	"time"

	"kielo/internal/queue"
)

// StageError records a non-fatal or fatal failure raised by one stage.
type StageError struct {
	Stage   string
	Message string
}

// ItemReport summarizes the outcome of one item.
type ItemReport struct {
	ItemID      int64
	SourcePath  string
	Title       string
	Status      queue.Status
	OutputFile  string
	StageErrors []StageError
	Elapsed     time.Duration
}

// Failed reports whether the item ended in the failed status.
func (r ItemReport) Failed() bool {
	return r.Status == queue.StatusFailed
}

// BatchReport summarizes one full pipeline run.
type BatchReport struct {
	BatchID   string
	StartedAt time.Time
	Elapsed   time.Duration
	Items     []ItemReport
}

// Completed counts items that finished the full stage sequence.
func (r *BatchReport) Completed() int {
	count := 0
	for _, item := range r.Items {
		if item.Status == queue.StatusCompleted {
			count++
		}
	}
	return count
}

// Failed counts items that ended in the failed status.
func (r *BatchReport) Failed() int {
	count := 0
	for _, item := range r.Items {
		if item.Failed() {
			count++
		}
	}
	return count
}
