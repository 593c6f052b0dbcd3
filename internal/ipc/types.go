package ipc

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/workflow status information.
type StatusResponse struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"database_path"`
	LockPath     string         `json:"lock_path"`
	LastError    string         `json:"last_error"`
	LessonStats  map[string]int `json:"lesson_stats"`
	LastLesson   *Lesson        `json:"last_lesson"`
}

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// Lesson is the wire representation of a lesson.
type Lesson struct {
	ID           int64  `json:"id"`
	VideoID      string `json:"video_id"`
	SourceURL    string `json:"source_url"`
	Status       string `json:"status"`
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
	WordCount    int    `json:"word_count"`
	SegmentCount int    `json:"segment_count"`
	Progress     string `json:"progress"`
	Error        string `json:"error"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// LessonAddRequest enqueues a lesson for a YouTube URL.
type LessonAddRequest struct {
	URL   string `json:"url"`
	Force bool   `json:"force"`
}

// LessonAddResponse reports the enqueued (or already completed) lesson.
type LessonAddResponse struct {
	Lesson   Lesson `json:"lesson"`
	Existing bool   `json:"existing"`
}

// LessonListRequest filters lesson listing by status.
type LessonListRequest struct {
	Statuses []string `json:"statuses"`
}

// LessonListResponse contains lesson entries.
type LessonListResponse struct {
	Lessons []Lesson `json:"lessons"`
}

// LessonShowRequest fetches a single lesson by id.
type LessonShowRequest struct {
	ID int64 `json:"id"`
}

// LessonShowResponse contains a single lesson with its rendered sheet.
type LessonShowResponse struct {
	Lesson   Lesson `json:"lesson"`
	Markdown string `json:"markdown"`
}

// LessonRetryRequest resets a failed lesson back to pending.
type LessonRetryRequest struct {
	ID int64 `json:"id"`
}

// LessonRetryResponse reports retry result.
type LessonRetryResponse struct {
	Retried bool `json:"retried"`
}

// LessonClearRequest removes lessons, optionally limited by status.
type LessonClearRequest struct {
	Statuses []string `json:"statuses"`
}

// LessonClearResponse reports number of removed entries.
type LessonClearResponse struct {
	Removed int64 `json:"removed"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports whether the test notification went out.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
