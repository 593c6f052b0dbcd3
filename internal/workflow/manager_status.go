package workflow

import (
	"context"

	"lezione/internal/logging"
	"lezione/internal/store"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	LastError   string
	LastLesson  *store.Lesson
	LessonStats map[store.Status]int
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastLesson := m.lastLesson
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read lesson stats", logging.Error(err))
	}

	summary := StatusSummary{Running: running, LessonStats: stats}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastLesson != nil {
		copy := *lastLesson
		summary.LastLesson = &copy
	}
	return summary
}
