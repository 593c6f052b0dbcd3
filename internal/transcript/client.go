package transcript

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	yt_transcript "github.com/horiagug/youtube-transcript-api-go/pkg/yt_transcript"
	yt_transcript_models "github.com/horiagug/youtube-transcript-api-go/pkg/yt_transcript_models"

	"lezione/internal/config"
	"lezione/internal/logging"
)

// Result is a fetched transcript reduced to the form the lesson builder needs.
type Result struct {
	VideoID      string
	Language     string
	LanguageCode string
	Generated    bool
	Segments     int
	Duration     time.Duration
	Text         string
}

// Fetcher is the slice of the upstream client the service depends on.
// Tests substitute a fake; production uses yt_transcript.Client.
type Fetcher interface {
	GetTranscripts(videoID string, languages []string) ([]yt_transcript_models.Transcript, error)
}

// Client fetches transcripts honoring the configured language preferences.
type Client struct {
	fetcher   Fetcher
	languages []string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewClient builds a transcript client from configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		fetcher:   yt_transcript.NewClient(),
		languages: append([]string(nil), cfg.Transcript.Languages...),
		timeout:   time.Duration(cfg.Transcript.FetchTimeout) * time.Second,
		logger:    logging.WithComponent(logger, "transcript"),
	}
}

// NewClientWithFetcher builds a client around a custom fetcher (used in tests).
func NewClientWithFetcher(fetcher Fetcher, languages []string, logger *slog.Logger) *Client {
	return &Client{
		fetcher:   fetcher,
		languages: append([]string(nil), languages...),
		timeout:   30 * time.Second,
		logger:    logging.WithComponent(logger, "transcript"),
	}
}

// Fetch retrieves the transcript for videoID. The preferred languages are
// tried first; when none of them has a track the video's full track list is
// fetched and the first available track is used.
func (c *Client) Fetch(ctx context.Context, videoID string) (Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	tracks, err := c.fetchTracks(ctx, videoID, c.languages)
	if err != nil {
		classified := classifyError(err)
		if classified != ErrNotFound {
			return Result{}, classified
		}
		// None of the preferred languages is captioned. Ask for every
		// track and take whatever the video offers.
		c.logger.Debug("preferred languages unavailable, falling back",
			logging.String(logging.FieldVideoID, videoID),
			logging.Any("languages", c.languages))
		tracks, err = c.fetchTracks(ctx, videoID, nil)
		if err != nil {
			return Result{}, classifyError(err)
		}
	}

	track, ok := pickTrack(tracks, c.languages)
	if !ok {
		return Result{}, ErrNotFound
	}

	result := reduce(videoID, track)
	if result.Text == "" {
		return Result{}, ErrNotFound
	}

	c.logger.Info("transcript fetched",
		logging.String(logging.FieldVideoID, videoID),
		logging.String("language", result.LanguageCode),
		logging.Int("segments", result.Segments))
	return result, nil
}

// fetchTracks races the upstream call against ctx; the underlying client
// has no context support of its own.
func (c *Client) fetchTracks(ctx context.Context, videoID string, languages []string) ([]yt_transcript_models.Transcript, error) {
	type outcome struct {
		tracks []yt_transcript_models.Transcript
		err    error
	}

	resultCh := make(chan outcome, 1)
	go func() {
		tracks, err := c.fetcher.GetTranscripts(videoID, languages)
		resultCh <- outcome{tracks, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch transcript: %w", ctx.Err())
	case res := <-resultCh:
		return res.tracks, res.err
	}
}

// reduce concatenates caption segments into a single normalized string.
func reduce(videoID string, track yt_transcript_models.Transcript) Result {
	var sb strings.Builder
	var total float64
	count := 0
	for _, line := range track.Lines {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
		total = line.Start + line.Duration
		count++
	}

	return Result{
		VideoID:      videoID,
		Language:     track.Language,
		LanguageCode: track.LanguageCode,
		Generated:    track.IsGenerated,
		Segments:     count,
		Duration:     time.Duration(total * float64(time.Second)),
		Text:         sb.String(),
	}
}
