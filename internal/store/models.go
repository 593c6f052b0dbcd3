package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a lesson request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusFetching  Status = "fetching"
	StatusFetched   Status = "fetched"
	StatusRendering Status = "rendering"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// DaemonStopReason is the error message set on in-flight lessons when the
// daemon shuts down before they finish.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusFetching,
	StatusFetched,
	StatusRendering,
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

var processingStatuses = map[Status]struct{}{
	StatusFetching:  {},
	StatusFetched:   {},
	StatusRendering: {},
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// IsProcessing reports whether the status marks a lesson claimed by a stage.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// IsTerminal reports whether the lesson has finished, successfully or not.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Lesson is a single lesson request and, once completed, its generated sheet.
type Lesson struct {
	ID              int64
	RequestID       string
	SourceURL       string
	VideoID         string
	Status          Status
	Language        string
	LanguageCode    string
	WordCount       int
	SegmentCount    int
	TranscriptText  string
	SheetMarkdown   string
	ProgressMessage string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Filename returns the download filename for the lesson sheet.
func (l *Lesson) Filename() string {
	return "lezione_" + l.VideoID + ".md"
}
