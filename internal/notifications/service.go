// Package notifications delivers lesson lifecycle events to an ntfy topic.
// When no topic is configured every method is a no-op.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lezione/internal/config"
)

const userAgent = "Lezione/0.1.0"

// Service publishes user-facing notifications for lesson events.
type Service interface {
	NotifyLessonCompleted(ctx context.Context, videoID, language string, wordCount int) error
	NotifyLessonFailed(ctx context.Context, videoID, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService returns an ntfy-backed service, or a no-op service when the
// topic is not configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:        topic,
		client:          &http.Client{Timeout: timeout},
		notifyCompleted: cfg.Notifications.Completed,
		notifyErrors:    cfg.Notifications.Errors,
	}
}

type ntfyService struct {
	endpoint        string
	client          *http.Client
	notifyCompleted bool
	notifyErrors    bool
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

func (n *ntfyService) NotifyLessonCompleted(ctx context.Context, videoID, language string, wordCount int) error {
	if !n.notifyCompleted {
		return nil
	}
	data := payload{
		title:   "Lezione - Scheda pronta",
		message: fmt.Sprintf("Scheda di lezione generata per %s (%s, %d parole)", videoID, language, wordCount),
		tags:    []string{"lezione", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyLessonFailed(ctx context.Context, videoID, reason string) error {
	if !n.notifyErrors {
		return nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "errore sconosciuto"
	}
	data := payload{
		title:    "Lezione - Errore",
		message:  fmt.Sprintf("Elaborazione fallita per %s: %s", videoID, reason),
		tags:     []string{"lezione", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Lezione - Test",
		message:  "Notifica di prova",
		tags:     []string{"lezione", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyLessonCompleted(context.Context, string, string, int) error { return nil }
func (noopService) NotifyLessonFailed(context.Context, string, string) error         { return nil }
func (noopService) TestNotification(context.Context) error                           { return nil }
