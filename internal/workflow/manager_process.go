package workflow

import (
	"context"
	"errors"
	"log/slog"

	"lezione/internal/lesson"
	"lezione/internal/logging"
	"lezione/internal/store"
	"lezione/internal/transcript"
)

// Progress messages surfaced on the lesson status page.
const (
	progressFetching  = "Recupero della trascrizione..."
	progressRendering = "Generazione della scheda di lezione..."
)

func (m *Manager) process(ctx context.Context, current *store.Lesson) error {
	logger := m.logger.With(
		logging.Int64(logging.FieldLessonID, current.ID),
		logging.String(logging.FieldVideoID, current.VideoID),
	)
	logger.Info("processing lesson", logging.String(logging.FieldStage, "fetch"))

	if err := m.store.SetProgress(ctx, current.ID, progressFetching); err != nil {
		return m.fail(ctx, logger, current, err)
	}

	result, err := m.source.Fetch(ctx, current.VideoID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return m.fail(ctx, logger, current, err)
	}
	if err := m.store.SetTranscript(ctx, current.ID, result); err != nil {
		return m.fail(ctx, logger, current, err)
	}
	logger.Info("transcript fetched",
		logging.String("language", result.LanguageCode),
		logging.Int("segments", result.Segments),
	)

	if err := m.store.UpdateStatus(ctx, current.ID, store.StatusRendering); err != nil {
		return m.fail(ctx, logger, current, err)
	}
	if err := m.store.SetProgress(ctx, current.ID, progressRendering); err != nil {
		return m.fail(ctx, logger, current, err)
	}

	sheet := lesson.Build(result, lesson.Options{PreviewChars: m.cfg.Lesson.PreviewChars})
	if err := m.store.SetSheet(ctx, current.ID, sheet.Markdown, sheet.WordCount); err != nil {
		return m.fail(ctx, logger, current, err)
	}

	logger.Info("lesson completed",
		logging.String(logging.FieldStage, "render"),
		logging.Int("word_count", sheet.WordCount),
	)
	if err := m.notifier.NotifyLessonCompleted(ctx, current.VideoID, result.Language, sheet.WordCount); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}
	return nil
}

// fail records the failure with a user-facing message and notifies. The
// original processing error is returned so the loop can track it.
func (m *Manager) fail(ctx context.Context, logger *slog.Logger, current *store.Lesson, cause error) error {
	reason := transcript.UserMessage(cause)
	logger.Error("lesson processing failed",
		logging.Error(cause),
		logging.String(logging.FieldEventType, "lesson_failed"),
	)
	if err := m.store.MarkFailed(ctx, current.ID, reason); err != nil {
		logger.Error("failed to mark lesson failed", logging.Error(err))
	}
	if err := m.notifier.NotifyLessonFailed(ctx, current.VideoID, reason); err != nil {
		logger.Warn("failure notification failed", logging.Error(err))
	}
	return cause
}
