package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"lezione/internal/daemon"
	"lezione/internal/logging"
	"lezione/internal/store"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	svc := &service{daemon: d, logger: logging.WithComponent(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Lezione", svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
				)
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
		)
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func toWireLesson(l *store.Lesson) Lesson {
	return Lesson{
		ID:           l.ID,
		VideoID:      l.VideoID,
		SourceURL:    l.SourceURL,
		Status:       string(l.Status),
		Language:     l.Language,
		LanguageCode: l.LanguageCode,
		WordCount:    l.WordCount,
		SegmentCount: l.SegmentCount,
		Progress:     l.ProgressMessage,
		Error:        l.ErrorMessage,
		CreatedAt:    l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.DatabasePath = status.DatabasePath
	resp.LockPath = status.LockPath
	resp.LastError = status.Workflow.LastError
	resp.LessonStats = make(map[string]int, len(status.Workflow.LessonStats))
	for k, v := range status.Workflow.LessonStats {
		resp.LessonStats[string(k)] = v
	}
	if status.Workflow.LastLesson != nil {
		wire := toWireLesson(status.Workflow.LastLesson)
		resp.LastLesson = &wire
	}
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	s.daemon.RequestShutdown()
	resp.Stopped = true
	s.logger.Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) LessonAdd(req LessonAddRequest, resp *LessonAddResponse) error {
	added, existing, err := s.daemon.AddLesson(s.ctx, req.URL, req.Force)
	if err != nil {
		return err
	}
	resp.Lesson = toWireLesson(added)
	resp.Existing = existing
	return nil
}

func (s *service) LessonList(req LessonListRequest, resp *LessonListResponse) error {
	statuses := make([]store.Status, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		parsed, ok := store.ParseStatus(raw)
		if !ok {
			return fmt.Errorf("unknown status %q", raw)
		}
		statuses = append(statuses, parsed)
	}
	lessons, err := s.daemon.ListLessons(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Lessons = make([]Lesson, 0, len(lessons))
	for _, l := range lessons {
		resp.Lessons = append(resp.Lessons, toWireLesson(l))
	}
	return nil
}

func (s *service) LessonShow(req LessonShowRequest, resp *LessonShowResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid lesson id %d", req.ID)
	}
	current, err := s.daemon.GetLesson(s.ctx, req.ID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("lesson %d not found", req.ID)
	}
	if err != nil {
		return err
	}
	resp.Lesson = toWireLesson(current)
	resp.Markdown = current.SheetMarkdown
	return nil
}

func (s *service) LessonRetry(req LessonRetryRequest, resp *LessonRetryResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid lesson id %d", req.ID)
	}
	if err := s.daemon.RetryLesson(s.ctx, req.ID); err != nil {
		return err
	}
	resp.Retried = true
	s.logger.Info("lesson retried",
		logging.String(logging.FieldEventType, "lesson_retry"),
		logging.Int64(logging.FieldLessonID, req.ID))
	return nil
}

func (s *service) LessonClear(req LessonClearRequest, resp *LessonClearResponse) error {
	statuses := make([]store.Status, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		parsed, ok := store.ParseStatus(raw)
		if !ok {
			return fmt.Errorf("unknown status %q", raw)
		}
		statuses = append(statuses, parsed)
	}
	removed, err := s.daemon.ClearLessons(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.logger.Info("lessons cleared",
		logging.String(logging.FieldEventType, "lesson_clear"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
