// Command lezioned runs the lesson daemon: the web front-end, the JSON API,
// the background lesson workflow, and the unix-socket IPC used by the CLI.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"lezione/internal/config"
	"lezione/internal/daemon"
	"lezione/internal/ipc"
	"lezione/internal/logging"
	"lezione/internal/store"
	"lezione/internal/transcript"
	"lezione/internal/web"
	"lezione/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open lesson store", logging.Error(err))
		return
	}
	defer st.Close()

	fetcher := transcript.NewClient(cfg, logger)
	manager := workflow.NewManager(cfg, st, fetcher, logger)

	d, err := daemon.New(cfg, st, logger, manager)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	webServer, err := web.NewServer(cfg, st, logger, func(ctx context.Context) web.Status {
		status := d.Status(ctx)
		return web.Status{
			Running:      status.Running,
			PID:          status.PID,
			DatabasePath: status.DatabasePath,
			LockPath:     status.LockPath,
			Workflow:     status.Workflow,
		}
	})
	if err != nil {
		logger.Error("create web server", logging.Error(err))
		return
	}
	if err := webServer.Start(ctx); err != nil {
		logger.Error("start web server", logging.Error(err))
		return
	}
	defer webServer.Stop()

	ipcServer, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	select {
	case <-ctx.Done():
	case <-d.ShutdownRequested():
	}
	logger.Info("lezioned shutting down")
}
