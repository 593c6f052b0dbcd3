package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"lezione/internal/config"
	"lezione/internal/logging"
	"lezione/internal/store"
	"lezione/internal/workflow"
)

// Status is the daemon snapshot served by the status endpoints.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockPath     string
	Workflow     workflow.StatusSummary
}

// StatusFunc supplies the daemon snapshot. The daemon wires its own Status
// method in; tests substitute a stub.
type StatusFunc func(ctx context.Context) Status

// Server hosts the HTML pages and the JSON API.
type Server struct {
	bind    string
	cfg     *config.Config
	store   *store.Store
	logger  *slog.Logger
	status  StatusFunc
	handler http.Handler

	listener net.Listener
	server   *http.Server
}

// NewServer builds the web server. It does not listen until Start.
func NewServer(cfg *config.Config, st *store.Store, logger *slog.Logger, status StatusFunc) (*Server, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("web server requires config and store")
	}
	bind := strings.TrimSpace(cfg.Web.Bind)
	if bind == "" {
		return nil, errors.New("web bind address is empty")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if status == nil {
		status = func(context.Context) Status { return Status{} }
	}

	s := &Server{
		bind:   bind,
		cfg:    cfg,
		store:  st,
		logger: logging.WithComponent(logger, "web"),
		status: status,
	}
	s.handler = s.routes()
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleHome)
	r.Post("/lessons", s.handleCreate)
	r.Get("/lessons/{id}", s.handleLessonPage)
	r.Get("/lessons/{id}/download", s.handleDownload)

	token := strings.TrimSpace(s.cfg.Web.APIToken)
	r.Route("/api", func(api chi.Router) {
		if token != "" {
			api.Use(bearerAuth(token))
		}
		api.Get("/status", s.handleAPIStatus)
		api.Get("/lessons", s.handleAPILessons)
		api.Post("/lessons", s.handleAPICreate)
		api.Get("/lessons/{id}", s.handleAPILesson)
	})

	return r
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listener and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("web listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("web server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down and closes the listener.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
