package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"lezione/internal/config"
	"lezione/internal/transcript"
)

// Store manages lesson persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the lesson database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// NewLesson inserts a pending lesson request for the given source URL and
// extracted video ID.
func (s *Store) NewLesson(ctx context.Context, sourceURL, videoID string) (*Lesson, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, errors.New("video ID required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO lessons (request_id, source_url, video_id, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		sourceURL,
		videoID,
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert lesson: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

const lessonColumns = `id, request_id, source_url, video_id, status, language, language_code,
    word_count, segment_count, transcript_text, sheet_markdown, progress_message,
    error_message, created_at, updated_at`

// GetByID returns the lesson with the given ID, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (*Lesson, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id)
	return scanLesson(row)
}

// FindByVideoID returns the most recent completed lesson for a video, or
// ErrNotFound. Used to avoid re-fetching transcripts already on file.
func (s *Store) FindByVideoID(ctx context.Context, videoID string) (*Lesson, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+lessonColumns+` FROM lessons
         WHERE video_id = ? AND status = ? ORDER BY id DESC LIMIT 1`,
		videoID, StatusCompleted)
	return scanLesson(row)
}

// List returns lessons newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

// NextByStatus claims the oldest lesson in from and moves it to to,
// returning the claimed lesson or nil when none is waiting.
func (s *Store) NextByStatus(ctx context.Context, from, to Status) (*Lesson, error) {
	if !transitionAllowed(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM lessons WHERE status = ? ORDER BY id LIMIT 1`, from).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select next lesson: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`UPDATE lessons SET status = ?, updated_at = ? WHERE id = ?`, to, timestamp, id); err != nil {
		return nil, fmt.Errorf("claim lesson: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	return s.GetByID(ctx, id)
}

// UpdateStatus transitions a lesson, validating the lifecycle.
func (s *Store) UpdateStatus(ctx context.Context, id int64, to Status) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !transitionAllowed(current.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
	}
	return s.exec(ctx,
		`UPDATE lessons SET status = ?, updated_at = ? WHERE id = ?`,
		to, now(), id)
}

// SetProgress updates the user-facing progress message.
func (s *Store) SetProgress(ctx context.Context, id int64, message string) error {
	return s.exec(ctx,
		`UPDATE lessons SET progress_message = ?, updated_at = ? WHERE id = ?`,
		message, now(), id)
}

// SetTranscript records a fetched transcript and moves the lesson to fetched.
func (s *Store) SetTranscript(ctx context.Context, id int64, result transcript.Result) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !transitionAllowed(current.Status, StatusFetched) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, StatusFetched)
	}
	return s.exec(ctx,
		`UPDATE lessons SET status = ?, language = ?, language_code = ?, segment_count = ?,
            transcript_text = ?, updated_at = ? WHERE id = ?`,
		StatusFetched, result.Language, result.LanguageCode, result.Segments,
		result.Text, now(), id)
}

// SetSheet records the generated sheet and completes the lesson.
func (s *Store) SetSheet(ctx context.Context, id int64, markdown string, wordCount int) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !transitionAllowed(current.Status, StatusCompleted) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, StatusCompleted)
	}
	return s.exec(ctx,
		`UPDATE lessons SET status = ?, sheet_markdown = ?, word_count = ?,
            progress_message = '', updated_at = ? WHERE id = ?`,
		StatusCompleted, markdown, wordCount, now(), id)
}

// MarkFailed moves a lesson to failed with a user-facing reason.
func (s *Store) MarkFailed(ctx context.Context, id int64, reason string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !transitionAllowed(current.Status, StatusFailed) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, StatusFailed)
	}
	return s.exec(ctx,
		`UPDATE lessons SET status = ?, error_message = ?, progress_message = '', updated_at = ?
         WHERE id = ?`,
		StatusFailed, reason, now(), id)
}

// Retry moves a failed lesson back to pending.
func (s *Store) Retry(ctx context.Context, id int64) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != StatusFailed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, StatusPending)
	}
	return s.exec(ctx,
		`UPDATE lessons SET status = ?, error_message = '', updated_at = ? WHERE id = ?`,
		StatusPending, now(), id)
}

// ResetStuck returns in-flight lessons to pending. Called on daemon startup
// to recover from unclean shutdowns.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lessons SET status = ?, updated_at = ? WHERE status IN (?, ?, ?)`,
		StatusPending, now(), StatusFetching, StatusFetched, StatusRendering)
	if err != nil {
		return 0, fmt.Errorf("reset stuck lessons: %w", err)
	}
	return res.RowsAffected()
}

// FailInFlight marks all non-terminal lessons failed with the given reason.
// Called on daemon shutdown.
func (s *Store) FailInFlight(ctx context.Context, reason string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lessons SET status = ?, error_message = ?, updated_at = ?
         WHERE status IN (?, ?, ?)`,
		StatusFailed, reason, now(), StatusFetching, StatusFetched, StatusRendering)
	if err != nil {
		return 0, fmt.Errorf("fail in-flight lessons: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes lessons by status; with no statuses it removes everything.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	query := `DELETE FROM lessons`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear lessons: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns lesson counts per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM lessons GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("lesson stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int, len(allStatuses))
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (*Lesson, error) {
	var lesson Lesson
	var createdAt, updatedAt string
	err := row.Scan(
		&lesson.ID,
		&lesson.RequestID,
		&lesson.SourceURL,
		&lesson.VideoID,
		&lesson.Status,
		&lesson.Language,
		&lesson.LanguageCode,
		&lesson.WordCount,
		&lesson.SegmentCount,
		&lesson.TranscriptText,
		&lesson.SheetMarkdown,
		&lesson.ProgressMessage,
		&lesson.ErrorMessage,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan lesson: %w", err)
	}

	if lesson.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if lesson.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &lesson, nil
}
