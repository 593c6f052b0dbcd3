package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"lezione/internal/config"
	"lezione/internal/logging"
	"lezione/internal/notifications"
	"lezione/internal/store"
	"lezione/internal/transcript"
)

// TranscriptSource retrieves a transcript for a video ID. Production uses
// *transcript.Client; tests substitute a fake.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) (transcript.Result, error)
}

// Manager coordinates lesson processing against the store.
type Manager struct {
	cfg          *config.Config
	store        *store.Store
	source       TranscriptSource
	logger       *slog.Logger
	notifier     notifications.Service
	pollInterval time.Duration

	mu         sync.RWMutex
	running    bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	lastErr    error
	lastLesson *store.Lesson
}

// NewManager constructs a workflow manager with the default notifier.
func NewManager(cfg *config.Config, st *store.Store, source TranscriptSource, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, st, source, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier
// (used in tests).
func NewManagerWithNotifier(cfg *config.Config, st *store.Store, source TranscriptSource, logger *slog.Logger, notifier notifications.Service) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Manager{
		cfg:          cfg,
		store:        st,
		source:       source,
		logger:       logging.WithComponent(logger, "workflow"),
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.PollInterval) * time.Second,
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if m.source == nil {
		m.mu.Unlock()
		return errors.New("workflow transcript source not configured")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for the loop to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		current, err := m.store.NextByStatus(ctx, store.StatusPending, store.StatusFetching)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			m.logger.Error("failed to claim next lesson",
				logging.Error(err),
				logging.String(logging.FieldEventType, "lesson_claim_failed"),
			)
			m.sleep(ctx)
			continue
		}
		if current == nil {
			m.sleep(ctx)
			continue
		}

		m.setLastLesson(current)
		if err := m.process(ctx, current); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
		}
	}
}

func (m *Manager) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastLesson(l *store.Lesson) {
	m.mu.Lock()
	if l != nil {
		copy := *l
		m.lastLesson = &copy
	} else {
		m.lastLesson = nil
	}
	m.mu.Unlock()
}
