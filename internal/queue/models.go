package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending        Status = "pending"
	StatusSubtitling     Status = "subtitling"
	StatusSubtitled      Status = "subtitled"
	StatusSlowing        Status = "slowing"
	StatusSlowed         Status = "slowed"
	StatusMixing         Status = "mixing"
	StatusMixed          Status = "mixed"
	StatusAppendingOutro Status = "appending_outro"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusSubtitling,
	StatusSubtitled,
	StatusSlowing,
	StatusSlowed,
	StatusMixing,
	StatusMixed,
	StatusAppendingOutro,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Item represents a pipeline item persisted in SQLite.
type Item struct {
	ID                 int64
	BatchID            string
	SourcePath         string
	Title              string
	Status             Status
	DetectedLanguage   string
	LanguageConfidence float64
	SubtitleFile       string
	OutputFile         string
	StagedFile         string
	ErrorMessage       string
	ProgressStage      string
	ProgressMessage    string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status ends an item's run.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SetFailed marks the item failed with the given message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = strings.TrimSpace(message)
}

// InitProgress resets progress fields for a new stage.
func (i *Item) InitProgress(stage, message string) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ErrorMessage = ""
}
