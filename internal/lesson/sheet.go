// Package lesson turns a fetched transcript into the Markdown lesson sheet
// shown on screen and offered for download.
package lesson

import (
	"fmt"
	"strings"
	"time"

	"lezione/internal/transcript"
)

// Options controls sheet generation.
type Options struct {
	// PreviewChars bounds the transcript excerpt in the preview section.
	PreviewChars int
}

// Sheet is a generated lesson card.
type Sheet struct {
	VideoID   string
	Language  string
	WordCount int
	Markdown  string
}

// Filename returns the download filename for the sheet.
func (s Sheet) Filename() string {
	return fmt.Sprintf("lezione_%s.md", s.VideoID)
}

// Build renders the lesson sheet for a transcript. The card structure is
// fixed: general info, a transcript preview, placeholder study sections to
// be filled in by the student, and the full transcript in a collapsible
// block at the end.
func Build(t transcript.Result, opts Options) Sheet {
	previewChars := opts.PreviewChars
	if previewChars <= 0 {
		previewChars = 500
	}

	words := len(strings.Fields(t.Text))
	preview := EscapeMarkdown(t.Text)
	// Truncate by runes so a multibyte character at the boundary is never
	// split into invalid UTF-8.
	if runes := []rune(t.Text); len(runes) > previewChars {
		preview = EscapeMarkdown(string(runes[:previewChars])) + "..."
	}

	lang := t.Language
	if lang == "" {
		lang = t.LanguageCode
	}

	var sb strings.Builder
	sb.WriteString("# 📚 Scheda di Lezione\n\n")

	sb.WriteString("## 📋 Informazioni Generali\n")
	fmt.Fprintf(&sb, "- **Video**: `%s`\n", t.VideoID)
	fmt.Fprintf(&sb, "- **Lunghezza trascrizione**: %d parole\n", words)
	fmt.Fprintf(&sb, "- **Lingua**: %s\n", lang)
	if t.Duration > 0 {
		fmt.Fprintf(&sb, "- **Durata**: %s\n", formatDuration(t.Duration))
	}
	sb.WriteString("\n")

	sb.WriteString("## 📝 Anteprima Trascrizione\n")
	sb.WriteString(preview)
	sb.WriteString("\n\n")

	sb.WriteString(`## 🎯 Obiettivi della Lezione
*Annota qui gli obiettivi principali della lezione.*

## 🔑 Concetti Chiave
*Elenca i concetti principali trattati nella lezione.*

1. Concetto 1
2. Concetto 2
3. Concetto 3

## 📖 Spiegazione Dettagliata
*Approfondisci qui gli argomenti trattati.*

### Argomento 1
Descrizione dettagliata...

### Argomento 2
Descrizione dettagliata...

## 🧮 Formule Importanti
*Se applicabile, riporta qui le formule trattate.*

## 💡 Esempi
*Raccogli qui gli esempi pratici discussi nella lezione.*

## 📌 Riepilogo
*Riassumi qui i punti chiave della lezione.*

---

### 📄 Trascrizione Completa
<details>
<summary>Clicca per visualizzare la trascrizione completa</summary>

`)
	sb.WriteString(EscapeMarkdown(t.Text))
	sb.WriteString("\n\n</details>\n")

	return Sheet{
		VideoID:   t.VideoID,
		Language:  lang,
		WordCount: words,
		Markdown:  sb.String(),
	}
}

// markdownSpecials are the characters escaped in transcript text so caption
// content cannot break the sheet formatting. Backslash must come first.
var markdownSpecials = []string{
	`\`, "`", "*", "_", "{", "}", "[", "]", "(", ")", "#", "+", "-", ".", "!", "|",
}

// EscapeMarkdown escapes Markdown special characters in text.
func EscapeMarkdown(text string) string {
	for _, ch := range markdownSpecials {
		text = strings.ReplaceAll(text, ch, `\`+ch)
	}
	return text
}

func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
