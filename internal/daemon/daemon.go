package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"lezione/internal/config"
	"lezione/internal/logging"
	"lezione/internal/notifications"
	"lezione/internal/store"
	"lezione/internal/videoid"
	"lezione/internal/workflow"
)

// Daemon coordinates background lesson processing and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	workflow *workflow.Manager

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	shutdown chan struct{}
	stopOnce sync.Once
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DatabasePath string
	LockPath     string
	Workflow     workflow.StatusSummary
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "lezioned.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    st,
		workflow: wf,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		shutdown: make(chan struct{}),
	}, nil
}

// Start acquires the daemon lock, recovers stranded lessons, and launches
// the workflow manager.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lezione daemon instance is already running")
	}

	reset, err := d.store.ResetStuck(ctx)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("reset stranded lessons: %w", err)
	}
	if reset > 0 {
		d.logger.Info("stranded lessons returned to pending", logging.Int64("count", reset))
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.workflow.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("lezione daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing, marks in-flight lessons failed, and
// releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()

	failed, err := d.store.FailInFlight(context.Background(), store.DaemonStopReason)
	if err != nil {
		d.logger.Warn("failed to mark in-flight lessons", logging.Error(err))
	} else if failed > 0 {
		d.logger.Info("in-flight lessons marked failed", logging.Int64("count", failed))
	}

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("lezione daemon stopped")
}

// RequestShutdown stops processing and signals the hosting process to exit.
func (d *Daemon) RequestShutdown() {
	d.Stop()
	d.stopOnce.Do(func() { close(d.shutdown) })
}

// ShutdownRequested is closed when an IPC stop asks the process to exit.
func (d *Daemon) ShutdownRequested() <-chan struct{} {
	return d.shutdown
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.cfg.DatabasePath(),
		LockPath:     d.lockPath,
		Workflow:     d.workflow.Status(ctx),
	}
}

// AddLesson enqueues a lesson for the given YouTube URL. When the video
// already has a completed lesson and force is false, the existing lesson is
// returned instead.
func (d *Daemon) AddLesson(ctx context.Context, rawURL string, force bool) (*store.Lesson, bool, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, false, errors.New("youtube url is required")
	}
	id, err := videoid.Extract(trimmed)
	if err != nil {
		return nil, false, fmt.Errorf("extract video id: %w", err)
	}

	if !force {
		existing, err := d.store.FindByVideoID(ctx, id)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, false, err
		}
		if existing != nil {
			return existing, true, nil
		}
	}

	created, err := d.store.NewLesson(ctx, trimmed, id)
	if err != nil {
		return nil, false, fmt.Errorf("enqueue lesson: %w", err)
	}
	d.logger.Info("lesson enqueued",
		logging.Int64(logging.FieldLessonID, created.ID),
		logging.String(logging.FieldVideoID, created.VideoID),
	)
	return created, false, nil
}

// ListLessons returns lessons filtered by optional statuses.
func (d *Daemon) ListLessons(ctx context.Context, statuses []store.Status) ([]*store.Lesson, error) {
	return d.store.List(ctx, statuses...)
}

// GetLesson returns a single lesson by id.
func (d *Daemon) GetLesson(ctx context.Context, id int64) (*store.Lesson, error) {
	return d.store.GetByID(ctx, id)
}

// RetryLesson moves a failed lesson back to pending.
func (d *Daemon) RetryLesson(ctx context.Context, id int64) error {
	return d.store.Retry(ctx, id)
}

// ClearLessons removes lessons, optionally limited to the given statuses.
func (d *Daemon) ClearLessons(ctx context.Context, statuses []store.Status) (int64, error) {
	return d.store.Clear(ctx, statuses...)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}
