package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lezione/internal/ipc"
)

const daemonBinary = "lezioned"

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the lezione daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			socket := ctx.socketPath()

			if client, err := ipc.Dial(socket); err == nil {
				client.Close()
				fmt.Fprintln(stdout, "Daemon already running")
				return nil
			}

			exe, err := daemonExecutable()
			if err != nil {
				return err
			}
			launch := exec.Command(exe)
			launch.Stdout = nil
			launch.Stderr = nil
			if err := launch.Start(); err != nil {
				return fmt.Errorf("launch daemon: %w", err)
			}
			// Detach: the daemon owns its own lifecycle from here.
			if err := launch.Process.Release(); err != nil {
				return fmt.Errorf("release daemon process: %w", err)
			}

			fmt.Fprintln(stdout, "Daemon not running, launching...")
			if err := waitForSocket(socket, 10*time.Second); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Daemon started")
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the lezione daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			client, err := ipc.Dial(ctx.socketPath())
			if err != nil {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			defer client.Close()
			if _, err := client.Stop(); err != nil {
				return fmt.Errorf("stop daemon: %w", err)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and lesson status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				renderStatus(cmd.OutOrStdout(), resp)
				return nil
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, statusCmd, newRunCommand(ctx)}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the lezione daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}
			run := exec.CommandContext(cmd.Context(), exe)
			run.Stdout = cmd.OutOrStdout()
			run.Stderr = cmd.ErrOrStderr()
			run.Stdin = cmd.InOrStdin()
			return run.Run()
		},
	}
}

// daemonExecutable locates lezioned next to the CLI binary, falling back to
// PATH lookup.
func daemonExecutable() (string, error) {
	if self, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(self), daemonBinary)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	path, err := exec.LookPath(daemonBinary)
	if err != nil {
		return "", fmt.Errorf("locate %s binary: %w", daemonBinary, err)
	}
	return path, nil
}

func waitForSocket(socket string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		client, err := ipc.Dial(socket)
		if err == nil {
			client.Close()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return errors.New("daemon did not become ready; check the daemon log")
}

func renderStatus(out io.Writer, resp *ipc.StatusResponse) {
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(out, line)
	}
	runningKind := statusError
	runningDetail := "not running"
	if resp.Running {
		runningKind = statusOK
		runningDetail = fmt.Sprintf("pid %d", resp.PID)
	}
	fmt.Fprintln(out, renderStatusLine("Running", runningKind, runningDetail, colorize))
	fmt.Fprintln(out, renderStatusLine("Database", statusInfo, resp.DatabasePath, colorize))
	fmt.Fprintln(out, renderStatusLine("Lock file", statusInfo, resp.LockPath, colorize))
	if resp.LastError != "" {
		fmt.Fprintln(out, renderStatusLine("Last error", statusWarn, resp.LastError, colorize))
	}
	fmt.Fprintln(out)

	for _, line := range renderSectionHeader("Lessons", colorize) {
		fmt.Fprintln(out, line)
	}
	if len(resp.LessonStats) == 0 {
		fmt.Fprintln(out, renderStatusLine("Total", statusInfo, "0", colorize))
	} else {
		names := make([]string, 0, len(resp.LessonStats))
		for name := range resp.LessonStats {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(out, renderStatusLine(name, statusInfo, fmt.Sprintf("%d", resp.LessonStats[name]), colorize))
		}
	}
	if resp.LastLesson != nil {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader("Last lesson", colorize) {
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out, renderStatusLine("Video", statusInfo, resp.LastLesson.VideoID, colorize))
		fmt.Fprintln(out, renderStatusLine("Status", statusInfo, resp.LastLesson.Status, colorize))
	}
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 14
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}
