package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"lezione/internal/logging"
	"lezione/internal/store"
	"lezione/internal/videoid"
)

// User-facing form errors, matching the messages the results page shows.
const (
	msgEmptyURL   = "Per favore, inserisci un URL di YouTube valido."
	msgInvalidURL = "URL non valido. Assicurati di inserire un URL YouTube corretto."
)

const recentLessonLimit = 20

type homeData struct {
	Error   string
	Lessons []*store.Lesson
}

type lessonData struct {
	Lesson  *store.Lesson
	Refresh bool
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderHome(w, r, "", http.StatusOK)
}

func (s *Server) renderHome(w http.ResponseWriter, r *http.Request, formError string, status int) {
	lessons, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list lessons", logging.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if len(lessons) > recentLessonLimit {
		lessons = lessons[:recentLessonLimit]
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := homeTemplate.Execute(w, homeData{Error: formError, Lessons: lessons}); err != nil {
		s.logger.Error("failed to render home page", logging.Error(err))
	}
}

// handleCreate accepts the form submission, enqueues a lesson, and redirects
// to its status page. Re-submitting a video that already has a completed
// lesson redirects to the existing one unless force is set.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderHome(w, r, msgInvalidURL, http.StatusBadRequest)
		return
	}
	rawURL := strings.TrimSpace(r.PostFormValue("url"))
	if rawURL == "" {
		s.renderHome(w, r, msgEmptyURL, http.StatusBadRequest)
		return
	}
	id, err := videoid.Extract(rawURL)
	if err != nil {
		s.renderHome(w, r, msgInvalidURL, http.StatusBadRequest)
		return
	}
	force := r.PostFormValue("force") != ""

	if !force {
		existing, err := s.store.FindByVideoID(r.Context(), id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("lesson lookup failed", logging.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if existing != nil {
			http.Redirect(w, r, fmt.Sprintf("/lessons/%d", existing.ID), http.StatusSeeOther)
			return
		}
	}

	created, err := s.store.NewLesson(r.Context(), rawURL, id)
	if err != nil {
		s.logger.Error("failed to enqueue lesson", logging.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.logger.Info("lesson enqueued",
		logging.Int64(logging.FieldLessonID, created.ID),
		logging.String(logging.FieldVideoID, created.VideoID),
	)
	http.Redirect(w, r, fmt.Sprintf("/lessons/%d", created.ID), http.StatusSeeOther)
}

func (s *Server) handleLessonPage(w http.ResponseWriter, r *http.Request) {
	current, ok := s.lessonFromPath(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := lessonData{Lesson: current, Refresh: !current.Status.IsTerminal()}
	if err := lessonTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render lesson page", logging.Error(err))
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	current, ok := s.lessonFromPath(w, r)
	if !ok {
		return
	}
	if current.Status != store.StatusCompleted {
		http.Error(w, "lesson not completed", http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", current.Filename()))
	_, _ = w.Write([]byte(current.SheetMarkdown))
}

func (s *Server) lessonFromPath(w http.ResponseWriter, r *http.Request) (*store.Lesson, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	current, err := s.store.GetByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		s.logger.Error("lesson lookup failed", logging.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return current, true
}
