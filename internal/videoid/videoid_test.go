package videoid_test

import (
	"errors"
	"testing"

	"lezione/internal/videoid"
)

func TestExtract(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", id, true},
		{"watch extra params", "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ&t=42s", id, true},
		{"watch no scheme", "www.youtube.com/watch?v=dQw4w9WgXcQ", id, true},
		{"mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", id, true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", id, true},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", id, true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", id, true},
		{"legacy v path", "https://www.youtube.com/v/dQw4w9WgXcQ", id, true},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", id, true},
		{"bare id", "dQw4w9WgXcQ", id, true},
		{"surrounding whitespace", "  https://youtu.be/dQw4w9WgXcQ  ", id, true},
		{"empty", "", "", false},
		{"not youtube", "https://vimeo.com/123456", "", false},
		{"truncated id", "https://youtu.be/dQw4w9WgXc", "", false},
		{"garbage", "definitely not a url", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := videoid.Extract(tc.input)
			if tc.ok {
				if err != nil {
					t.Fatalf("Extract(%q) failed: %v", tc.input, err)
				}
				if got != tc.want {
					t.Fatalf("Extract(%q) = %q, want %q", tc.input, got, tc.want)
				}
				return
			}
			if !errors.Is(err, videoid.ErrNoVideoID) {
				t.Fatalf("Extract(%q) = %q, %v; want ErrNoVideoID", tc.input, got, err)
			}
		})
	}
}

func TestValid(t *testing.T) {
	if !videoid.Valid("dQw4w9WgXcQ") {
		t.Fatal("expected valid ID")
	}
	for _, bad := range []string{"", "short", "dQw4w9WgXcQQ", "dQw4w9WgXc!", "dQw4w9WgXc "} {
		if videoid.Valid(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}
