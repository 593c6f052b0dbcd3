// Package videoid extracts the 11-character YouTube video identifier from
// the URL shapes users paste: watch links, short youtu.be links, embed and
// legacy /v/ paths, shorts links, and bare identifiers.
package videoid

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoVideoID indicates the input does not contain a recognizable video identifier.
var ErrNoVideoID = errors.New("no YouTube video ID found")

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/watch\?(?:.*&)?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/v/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Extract returns the video ID embedded in raw. A bare 11-character ID is
// accepted as-is so CLI users can skip the URL entirely.
func Extract(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoVideoID
	}
	if Valid(raw) {
		return raw, nil
	}
	for _, pattern := range patterns {
		if match := pattern.FindStringSubmatch(raw); match != nil {
			return match[1], nil
		}
	}
	return "", ErrNoVideoID
}

// Valid reports whether id is an 11-character YouTube video identifier.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}
