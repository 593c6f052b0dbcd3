package transcript

import (
	"golang.org/x/text/language"

	yt_transcript_models "github.com/horiagug/youtube-transcript-api-go/pkg/yt_transcript_models"
)

// pickTrack selects the transcript to use from the tracks a video offers.
// Preferred languages are tried in order with BCP 47 matching, so a
// preference for "en" accepts an "en-GB" track. When nothing matches, the
// first track wins (the original behavior for videos captioned only in
// other languages).
func pickTrack(tracks []yt_transcript_models.Transcript, preferred []string) (yt_transcript_models.Transcript, bool) {
	if len(tracks) == 0 {
		return yt_transcript_models.Transcript{}, false
	}

	available := make([]language.Tag, 0, len(tracks))
	indexes := make([]int, 0, len(tracks))
	for i, track := range tracks {
		tag, err := language.Parse(track.LanguageCode)
		if err != nil {
			continue
		}
		available = append(available, tag)
		indexes = append(indexes, i)
	}

	if len(available) > 0 {
		matcher := language.NewMatcher(available)
		for _, want := range preferred {
			tag, err := language.Parse(want)
			if err != nil {
				continue
			}
			if _, index, conf := matcher.Match(tag); conf >= language.High {
				return tracks[indexes[index]], true
			}
		}
	}

	return tracks[0], true
}
