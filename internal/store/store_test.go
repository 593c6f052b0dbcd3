package store_test

import (
	"context"
	"errors"
	"testing"

	"lezione/internal/store"
	"lezione/internal/testsupport"
	"lezione/internal/transcript"
)

func newLesson(t *testing.T, st *store.Store) *store.Lesson {
	t.Helper()
	lesson, err := st.NewLesson(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("NewLesson failed: %v", err)
	}
	return lesson
}

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	lesson := newLesson(t, st)
	if lesson.ID == 0 {
		t.Fatal("expected lesson ID to be assigned")
	}
	if lesson.Status != store.StatusPending {
		t.Fatalf("expected pending status, got %q", lesson.Status)
	}
	if lesson.RequestID == "" {
		t.Fatal("expected request ID to be assigned")
	}
	if lesson.CreatedAt.IsZero() || lesson.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestNewLessonRequiresVideoID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if _, err := st.NewLesson(context.Background(), "https://example.com", "  "); err == nil {
		t.Fatal("expected error for missing video ID")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if _, err := st.GetByID(context.Background(), 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	lesson := newLesson(t, st)

	claimed, err := st.NextByStatus(ctx, store.StatusPending, store.StatusFetching)
	if err != nil {
		t.Fatalf("NextByStatus failed: %v", err)
	}
	if claimed == nil || claimed.ID != lesson.ID {
		t.Fatalf("expected to claim lesson %d, got %+v", lesson.ID, claimed)
	}
	if claimed.Status != store.StatusFetching {
		t.Fatalf("expected fetching, got %q", claimed.Status)
	}

	result := transcript.Result{
		Language:     "Italian",
		LanguageCode: "it",
		Segments:     12,
		Text:         "testo della lezione",
	}
	if err := st.SetTranscript(ctx, lesson.ID, result); err != nil {
		t.Fatalf("SetTranscript failed: %v", err)
	}

	if err := st.UpdateStatus(ctx, lesson.ID, store.StatusRendering); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if err := st.SetSheet(ctx, lesson.ID, "# Scheda", 3); err != nil {
		t.Fatalf("SetSheet failed: %v", err)
	}

	final, err := st.GetByID(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if final.Status != store.StatusCompleted {
		t.Fatalf("expected completed, got %q", final.Status)
	}
	if final.SheetMarkdown != "# Scheda" || final.WordCount != 3 {
		t.Fatalf("sheet not recorded: %+v", final)
	}
	if final.TranscriptText != "testo della lezione" || final.LanguageCode != "it" {
		t.Fatalf("transcript not recorded: %+v", final)
	}
}

func TestInvalidTransitionRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	lesson := newLesson(t, st)
	err := st.UpdateStatus(ctx, lesson.ID, store.StatusCompleted)
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestNextByStatusEmptyQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	claimed, err := st.NextByStatus(context.Background(), store.StatusPending, store.StatusFetching)
	if err != nil {
		t.Fatalf("NextByStatus failed: %v", err)
	}
	if claimed != nil {
		t.Fatalf("expected nil claim, got %+v", claimed)
	}
}

func TestMarkFailedAndRetry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	lesson := newLesson(t, st)
	if err := st.MarkFailed(ctx, lesson.ID, "Nessuna trascrizione trovata per questo video."); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	failed, err := st.GetByID(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if failed.Status != store.StatusFailed || failed.ErrorMessage == "" {
		t.Fatalf("failure not recorded: %+v", failed)
	}

	if err := st.Retry(ctx, lesson.ID); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	retried, err := st.GetByID(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retried.Status != store.StatusPending || retried.ErrorMessage != "" {
		t.Fatalf("retry not recorded: %+v", retried)
	}

	// Retrying a non-failed lesson is rejected.
	if err := st.Retry(ctx, lesson.ID); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestMarkFailedRejectsCompletedLesson(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	lesson := newLesson(t, st)
	if _, err := st.NextByStatus(ctx, store.StatusPending, store.StatusFetching); err != nil {
		t.Fatalf("NextByStatus failed: %v", err)
	}
	if err := st.SetTranscript(ctx, lesson.ID, transcript.Result{Language: "Italiano", LanguageCode: "it", Segments: 1, Text: "ciao"}); err != nil {
		t.Fatalf("SetTranscript failed: %v", err)
	}
	if err := st.UpdateStatus(ctx, lesson.ID, store.StatusRendering); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if err := st.SetSheet(ctx, lesson.ID, "# scheda", 1); err != nil {
		t.Fatalf("SetSheet failed: %v", err)
	}

	if err := st.MarkFailed(ctx, lesson.ID, "boom"); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestResetStuck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	lesson := newLesson(t, st)
	if _, err := st.NextByStatus(ctx, store.StatusPending, store.StatusFetching); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	reset, err := st.ResetStuck(ctx)
	if err != nil {
		t.Fatalf("ResetStuck failed: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset lesson, got %d", reset)
	}

	recovered, err := st.GetByID(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if recovered.Status != store.StatusPending {
		t.Fatalf("expected pending after reset, got %q", recovered.Status)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := newLesson(t, st)
	second := newLesson(t, st)
	if err := st.MarkFailed(ctx, first.ID, "boom"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	failed, err := st.List(ctx, store.StatusFailed)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != first.ID {
		t.Fatalf("unexpected failed list: %+v", failed)
	}

	all, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", all)
	}
}

func TestFindByVideoIDOnlyCompleted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	lesson := newLesson(t, st)
	if _, err := st.FindByVideoID(ctx, lesson.VideoID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for pending lesson, got %v", err)
	}

	if _, err := st.NextByStatus(ctx, store.StatusPending, store.StatusFetching); err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if err := st.SetTranscript(ctx, lesson.ID, transcript.Result{LanguageCode: "it", Text: "x"}); err != nil {
		t.Fatalf("SetTranscript failed: %v", err)
	}
	if err := st.UpdateStatus(ctx, lesson.ID, store.StatusRendering); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if err := st.SetSheet(ctx, lesson.ID, "# Scheda", 1); err != nil {
		t.Fatalf("SetSheet failed: %v", err)
	}

	found, err := st.FindByVideoID(ctx, lesson.VideoID)
	if err != nil {
		t.Fatalf("FindByVideoID failed: %v", err)
	}
	if found.ID != lesson.ID {
		t.Fatalf("unexpected lesson %+v", found)
	}
}

func TestClearAndStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	newLesson(t, st)
	second := newLesson(t, st)
	if err := st.MarkFailed(ctx, second.ID, "boom"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[store.StatusPending] != 1 || stats[store.StatusFailed] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}

	removed, err := st.Clear(ctx, store.StatusFailed)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	removed, err = st.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 remaining removed, got %d", removed)
	}
}
