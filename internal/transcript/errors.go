package transcript

import (
	"errors"
	"strings"
)

// Fetch failures map onto the three user-facing classes the front-end
// distinguishes, plus rate limiting.
var (
	ErrDisabled        = errors.New("transcripts are disabled for this video")
	ErrNotFound        = errors.New("no transcript found for this video")
	ErrUnavailable     = errors.New("video unavailable or invalid ID")
	ErrTooManyRequests = errors.New("rate limited by YouTube, try again later")
)

// classifyError maps errors surfaced by the transcript API onto the
// package sentinels. The upstream module reports failure modes as message
// markers inside wrapped errors, so classification is by substring.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "TooManyRequests"):
		return ErrTooManyRequests
	case strings.Contains(msg, "VideoUnavailable"):
		return ErrUnavailable
	case strings.Contains(msg, "NoTranscriptData"):
		return ErrDisabled
	case strings.Contains(msg, "no transcript found"):
		return ErrNotFound
	default:
		return err
	}
}

// UserMessage renders err as the message shown on the lesson page. Errors
// that have not been through Fetch are classified first so upstream failure
// markers still map to the right message.
func UserMessage(err error) string {
	err = classifyError(err)
	switch {
	case errors.Is(err, ErrDisabled):
		return "Le trascrizioni sono disabilitate per questo video."
	case errors.Is(err, ErrNotFound):
		return "Nessuna trascrizione trovata per questo video."
	case errors.Is(err, ErrUnavailable):
		return "Video non disponibile o ID non valido."
	case errors.Is(err, ErrTooManyRequests):
		return "Troppe richieste verso YouTube, riprova tra qualche minuto."
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
