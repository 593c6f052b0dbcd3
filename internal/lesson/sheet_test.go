package lesson_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"lezione/internal/lesson"
	"lezione/internal/transcript"
)

func sampleTranscript(text string) transcript.Result {
	return transcript.Result{
		VideoID:      "dQw4w9WgXcQ",
		Language:     "Italian",
		LanguageCode: "it",
		Segments:     3,
		Duration:     95 * time.Second,
		Text:         text,
	}
}

func TestBuildSheetStructure(t *testing.T) {
	sheet := lesson.Build(sampleTranscript("la forza è massa per accelerazione"), lesson.Options{PreviewChars: 500})

	if sheet.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected video ID %q", sheet.VideoID)
	}
	if sheet.WordCount != 6 {
		t.Fatalf("unexpected word count %d", sheet.WordCount)
	}
	for _, want := range []string{
		"# 📚 Scheda di Lezione",
		"**Lunghezza trascrizione**: 6 parole",
		"**Lingua**: Italian",
		"**Durata**: 1:35",
		"## 📝 Anteprima Trascrizione",
		"## 🔑 Concetti Chiave",
		"## 📌 Riepilogo",
		"<details>",
		"</details>",
	} {
		if !strings.Contains(sheet.Markdown, want) {
			t.Fatalf("sheet missing %q", want)
		}
	}
}

func TestBuildTruncatesPreview(t *testing.T) {
	long := strings.Repeat("parola ", 200)
	sheet := lesson.Build(sampleTranscript(long), lesson.Options{PreviewChars: 100})

	if !strings.Contains(sheet.Markdown, "...") {
		t.Fatal("expected truncated preview marker")
	}
	// The full transcript still appears in the details block.
	if strings.Count(sheet.Markdown, "parola") < 200 {
		t.Fatal("full transcript missing from details block")
	}
}

func TestBuildTruncatesPreviewOnRuneBoundary(t *testing.T) {
	accented := strings.Repeat("è", 600)
	sheet := lesson.Build(sampleTranscript(accented), lesson.Options{PreviewChars: 501})

	if !utf8.ValidString(sheet.Markdown) {
		t.Fatal("sheet contains invalid UTF-8")
	}
	if !strings.Contains(sheet.Markdown, "è...") {
		t.Fatal("expected preview truncated after a whole character")
	}

	// A transcript shorter than the limit in characters is never truncated,
	// even when its byte length exceeds the limit.
	short := lesson.Build(sampleTranscript(strings.Repeat("è", 300)), lesson.Options{PreviewChars: 501})
	if !utf8.ValidString(short.Markdown) {
		t.Fatal("sheet contains invalid UTF-8")
	}
	if strings.Contains(short.Markdown, "è...") {
		t.Fatal("unexpected truncation of 300-character transcript")
	}
}

func TestBuildEscapesTranscriptText(t *testing.T) {
	sheet := lesson.Build(sampleTranscript("testo con [parentesi] e #cancelletto"), lesson.Options{})

	if !strings.Contains(sheet.Markdown, `\[parentesi\]`) {
		t.Fatal("brackets not escaped")
	}
	if !strings.Contains(sheet.Markdown, `\#cancelletto`) {
		t.Fatal("hash not escaped")
	}
}

func TestEscapeMarkdown(t *testing.T) {
	got := lesson.EscapeMarkdown(`a\b*c`)
	if got != `a\\b\*c` {
		t.Fatalf("unexpected escape result %q", got)
	}
}

func TestFilename(t *testing.T) {
	sheet := lesson.Build(sampleTranscript("ciao"), lesson.Options{})
	if sheet.Filename() != "lezione_dQw4w9WgXcQ.md" {
		t.Fatalf("unexpected filename %q", sheet.Filename())
	}
}

func TestBuildFallsBackToLanguageCode(t *testing.T) {
	in := sampleTranscript("ciao")
	in.Language = ""
	sheet := lesson.Build(in, lesson.Options{})
	if sheet.Language != "it" {
		t.Fatalf("expected language code fallback, got %q", sheet.Language)
	}
}
