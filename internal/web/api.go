package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"lezione/internal/logging"
	"lezione/internal/store"
	"lezione/internal/videoid"
)

// LessonPayload is the JSON rendering of a lesson.
type LessonPayload struct {
	ID           int64     `json:"id"`
	VideoID      string    `json:"video_id"`
	SourceURL    string    `json:"source_url"`
	Status       string    `json:"status"`
	Language     string    `json:"language,omitempty"`
	LanguageCode string    `json:"language_code,omitempty"`
	WordCount    int       `json:"word_count,omitempty"`
	SegmentCount int       `json:"segment_count,omitempty"`
	Progress     string    `json:"progress,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LessonListResponse wraps the lesson list endpoint payload.
type LessonListResponse struct {
	Lessons []LessonPayload `json:"lessons"`
}

// LessonResponse wraps a single lesson, including the rendered sheet.
type LessonResponse struct {
	Lesson   LessonPayload `json:"lesson"`
	Markdown string        `json:"markdown,omitempty"`
}

// DaemonStatusResponse is the /api/status payload.
type DaemonStatusResponse struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"database_path"`
	LockPath     string         `json:"lock_path"`
	LastError    string         `json:"last_error,omitempty"`
	LessonCounts map[string]int `json:"lesson_counts"`
}

// CreateLessonRequest is the POST /api/lessons body.
type CreateLessonRequest struct {
	URL   string `json:"url"`
	Force bool   `json:"force"`
}

func toPayload(l *store.Lesson) LessonPayload {
	return LessonPayload{
		ID:           l.ID,
		VideoID:      l.VideoID,
		SourceURL:    l.SourceURL,
		Status:       string(l.Status),
		Language:     l.Language,
		LanguageCode: l.LanguageCode,
		WordCount:    l.WordCount,
		SegmentCount: l.SegmentCount,
		Progress:     l.ProgressMessage,
		Error:        l.ErrorMessage,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	status := s.status(r.Context())
	counts := make(map[string]int, len(status.Workflow.LessonStats))
	for st, n := range status.Workflow.LessonStats {
		counts[string(st)] = n
	}
	s.writeJSON(w, http.StatusOK, DaemonStatusResponse{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockPath:     status.LockPath,
		LastError:    status.Workflow.LastError,
		LessonCounts: counts,
	})
}

func (s *Server) handleAPILessons(w http.ResponseWriter, r *http.Request) {
	var statuses []store.Status
	for _, value := range r.URL.Query()["status"] {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		parsed, ok := store.ParseStatus(trimmed)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", trimmed))
			return
		}
		statuses = append(statuses, parsed)
	}

	lessons, err := s.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payloads := make([]LessonPayload, len(lessons))
	for i, l := range lessons {
		payloads[i] = toPayload(l)
	}
	s.writeJSON(w, http.StatusOK, LessonListResponse{Lessons: payloads})
}

func (s *Server) handleAPILesson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid lesson id")
		return
	}
	current, err := s.store.GetByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "lesson not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, LessonResponse{Lesson: toPayload(current), Markdown: current.SheetMarkdown})
}

func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	var req CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		s.writeError(w, http.StatusBadRequest, msgEmptyURL)
		return
	}
	id, err := videoid.Extract(rawURL)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, msgInvalidURL)
		return
	}

	if !req.Force {
		existing, err := s.store.FindByVideoID(r.Context(), id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if existing != nil {
			s.writeJSON(w, http.StatusOK, LessonResponse{Lesson: toPayload(existing), Markdown: existing.SheetMarkdown})
			return
		}
	}

	created, err := s.store.NewLesson(r.Context(), rawURL, id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("lesson enqueued",
		logging.Int64(logging.FieldLessonID, created.ID),
		logging.String(logging.FieldVideoID, created.VideoID),
	)
	w.Header().Set("Location", fmt.Sprintf("/api/lessons/%d", created.ID))
	s.writeJSON(w, http.StatusCreated, LessonResponse{Lesson: toPayload(created)})
}
