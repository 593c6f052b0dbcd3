package daemon_test

import (
	"context"
	"testing"

	"lezione/internal/daemon"
	"lezione/internal/logging"
	"lezione/internal/store"
	"lezione/internal/testsupport"
	"lezione/internal/transcript"
	"lezione/internal/workflow"
)

type stubSource struct{}

func (stubSource) Fetch(context.Context, string) (transcript.Result, error) {
	return transcript.Result{Language: "Italiano", LanguageCode: "it", Segments: 1, Text: "ciao"}, nil
}

func newDaemon(t *testing.T) (*daemon.Daemon, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := workflow.NewManagerWithNotifier(cfg, st, stubSource{}, logging.NewNop(), nil)
	d, err := daemon.New(cfg, st, logging.NewNop(), mgr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, st
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newDaemon(t)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	status := d.Status(context.Background())
	if !status.Running {
		t.Fatal("expected running status")
	}
	if status.PID <= 0 {
		t.Fatalf("unexpected pid %d", status.PID)
	}

	d.Stop()
	if d.Status(context.Background()).Running {
		t.Fatal("expected stopped status")
	}
	// Stop is idempotent.
	d.Stop()
}

func TestDaemonStartResetsStuckLessons(t *testing.T) {
	d, st := newDaemon(t)
	ctx := context.Background()

	if _, err := st.NewLesson(ctx, "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("NewLesson: %v", err)
	}
	claimed, err := st.NextByStatus(ctx, store.StatusPending, store.StatusFetching)
	if err != nil || claimed == nil {
		t.Fatalf("claim: %v %v", claimed, err)
	}

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	current, err := st.GetByID(ctx, claimed.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	// The workflow may already have re-claimed or completed the lesson; it
	// must not still be stranded in the pre-restart fetching claim.
	if current.Status == store.StatusFailed {
		t.Fatalf("lesson unexpectedly failed: %q", current.ErrorMessage)
	}
}

func TestDaemonAddLessonDedup(t *testing.T) {
	d, st := newDaemon(t)
	ctx := context.Background()

	first, existing, err := d.AddLesson(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", false)
	if err != nil {
		t.Fatalf("AddLesson: %v", err)
	}
	if existing {
		t.Fatal("first add should not report existing")
	}

	// Complete the lesson manually, then re-add.
	if _, err := st.NextByStatus(ctx, store.StatusPending, store.StatusFetching); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := st.SetTranscript(ctx, first.ID, transcript.Result{Language: "Italiano", LanguageCode: "it", Segments: 1, Text: "ciao"}); err != nil {
		t.Fatalf("SetTranscript: %v", err)
	}
	if err := st.UpdateStatus(ctx, first.ID, store.StatusRendering); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := st.SetSheet(ctx, first.ID, "# scheda", 1); err != nil {
		t.Fatalf("SetSheet: %v", err)
	}

	again, existing, err := d.AddLesson(ctx, "https://youtu.be/dQw4w9WgXcQ", false)
	if err != nil {
		t.Fatalf("AddLesson: %v", err)
	}
	if !existing || again.ID != first.ID {
		t.Fatalf("expected dedup to return lesson %d, got %d (existing=%v)", first.ID, again.ID, existing)
	}

	forced, existing, err := d.AddLesson(ctx, "https://youtu.be/dQw4w9WgXcQ", true)
	if err != nil {
		t.Fatalf("AddLesson force: %v", err)
	}
	if existing || forced.ID == first.ID {
		t.Fatal("force should enqueue a fresh lesson")
	}
}

func TestDaemonAddLessonRejectsInvalidURL(t *testing.T) {
	d, _ := newDaemon(t)
	if _, _, err := d.AddLesson(context.Background(), "https://example.com/video", false); err == nil {
		t.Fatal("expected error for non-YouTube URL")
	}
	if _, _, err := d.AddLesson(context.Background(), "   ", false); err == nil {
		t.Fatal("expected error for blank URL")
	}
}

func TestDaemonSecondInstanceBlocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	mgr := workflow.NewManagerWithNotifier(cfg, st, stubSource{}, logging.NewNop(), nil)
	first, err := daemon.New(cfg, st, logging.NewNop(), mgr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	secondMgr := workflow.NewManagerWithNotifier(cfg, st, stubSource{}, logging.NewNop(), nil)
	second, err := daemon.New(cfg, st, logging.NewNop(), secondMgr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second instance start to fail")
	}
}

func TestDaemonRequestShutdownSignals(t *testing.T) {
	d, _ := newDaemon(t)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	d.RequestShutdown()
	select {
	case <-d.ShutdownRequested():
	default:
		t.Fatal("expected shutdown channel to be closed")
	}
}
