// Package transcript retrieves YouTube caption transcripts through the
// youtube-transcript-api-go module and reduces them to the plain text the
// lesson builder consumes. Track selection honors the configured language
// preference order and falls back to whatever track the video offers.
package transcript
