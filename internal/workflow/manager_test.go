package workflow_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"lezione/internal/logging"
	"lezione/internal/store"
	"lezione/internal/testsupport"
	"lezione/internal/transcript"
	"lezione/internal/workflow"
)

type fakeSource struct {
	mu      sync.Mutex
	result  transcript.Result
	err     error
	fetched []string
}

func (f *fakeSource) Fetch(_ context.Context, videoID string) (transcript.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, videoID)
	if f.err != nil {
		return transcript.Result{}, f.err
	}
	result := f.result
	result.VideoID = videoID
	return result, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
	reasons   []string
}

func (r *recordingNotifier) NotifyLessonCompleted(_ context.Context, videoID, _ string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, videoID)
	return nil
}

func (r *recordingNotifier) NotifyLessonFailed(_ context.Context, videoID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, videoID)
	r.reasons = append(r.reasons, reason)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func waitForStatus(t *testing.T, st *store.Store, id int64, want store.Status) *store.Lesson {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		current, err := st.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if current.Status == want {
			return current
		}
		if current.Status.IsTerminal() && current.Status != want {
			t.Fatalf("lesson reached %s while waiting for %s (error: %q)", current.Status, want, current.ErrorMessage)
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("lesson %d never reached status %s", id, want)
	return nil
}

func TestManagerProcessesLesson(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	source := &fakeSource{result: transcript.Result{
		Language:     "Italiano",
		LanguageCode: "it",
		Segments:     3,
		Duration:     95 * time.Second,
		Text:         "prima frase seconda frase terza frase",
	}}
	notifier := &recordingNotifier{}
	mgr := workflow.NewManagerWithNotifier(cfg, st, source, logging.NewNop(), notifier)

	created, err := st.NewLesson(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("NewLesson: %v", err)
	}

	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.Stop()

	completed := waitForStatus(t, st, created.ID, store.StatusCompleted)
	if completed.LanguageCode != "it" {
		t.Fatalf("unexpected language code %q", completed.LanguageCode)
	}
	if completed.WordCount != 6 {
		t.Fatalf("expected word count 6, got %d", completed.WordCount)
	}
	if !strings.Contains(completed.SheetMarkdown, "Scheda di Lezione") {
		t.Fatalf("sheet markdown missing header:\n%s", completed.SheetMarkdown)
	}
	if completed.ProgressMessage != "" {
		t.Fatalf("expected progress cleared, got %q", completed.ProgressMessage)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.completed) != 1 || notifier.completed[0] != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected completion notifications %v", notifier.completed)
	}
}

func TestManagerMarksFailedWithUserMessage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	source := &fakeSource{err: errors.New("failed to fetch transcripts: VideoUnavailable")}
	notifier := &recordingNotifier{}
	mgr := workflow.NewManagerWithNotifier(cfg, st, source, logging.NewNop(), notifier)

	created, err := st.NewLesson(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("NewLesson: %v", err)
	}

	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.Stop()

	failed := waitForStatus(t, st, created.ID, store.StatusFailed)
	if failed.ErrorMessage != "Video non disponibile o ID non valido." {
		t.Fatalf("unexpected failure message %q", failed.ErrorMessage)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.failed) != 1 {
		t.Fatalf("expected one failure notification, got %v", notifier.failed)
	}
	if notifier.reasons[0] != "Video non disponibile o ID non valido." {
		t.Fatalf("unexpected notification reason %q", notifier.reasons[0])
	}
}

func TestManagerRetryReprocessesLesson(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	source := &fakeSource{err: errors.New("NoTranscriptData")}
	notifier := &recordingNotifier{}
	mgr := workflow.NewManagerWithNotifier(cfg, st, source, logging.NewNop(), notifier)

	created, err := st.NewLesson(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("NewLesson: %v", err)
	}

	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.Stop()

	waitForStatus(t, st, created.ID, store.StatusFailed)

	source.mu.Lock()
	source.err = nil
	source.result = transcript.Result{Language: "English", LanguageCode: "en", Segments: 1, Text: "hello there"}
	source.mu.Unlock()

	if err := st.Retry(context.Background(), created.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	completed := waitForStatus(t, st, created.ID, store.StatusCompleted)
	if completed.ErrorMessage != "" {
		t.Fatalf("expected error cleared after retry, got %q", completed.ErrorMessage)
	}
}

func TestManagerStartTwiceFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := workflow.NewManagerWithNotifier(cfg, st, &fakeSource{}, logging.NewNop(), &recordingNotifier{})

	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer mgr.Stop()
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
}

func TestManagerStatusReportsStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := workflow.NewManagerWithNotifier(cfg, st, &fakeSource{}, logging.NewNop(), &recordingNotifier{})

	if _, err := st.NewLesson(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("NewLesson: %v", err)
	}

	summary := mgr.Status(context.Background())
	if summary.Running {
		t.Fatal("manager should not report running before Start")
	}
	if summary.LessonStats[store.StatusPending] != 1 {
		t.Fatalf("unexpected stats %v", summary.LessonStats)
	}
}
