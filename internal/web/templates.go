package web

import (
	"html/template"

	"lezione/internal/store"
)

func statusLabel(status store.Status) string {
	switch status {
	case store.StatusPending:
		return "In attesa..."
	case store.StatusFetching:
		return "Estrazione della trascrizione in corso..."
	case store.StatusFetched, store.StatusRendering:
		return "Generazione della scheda di lezione in corso..."
	case store.StatusCompleted:
		return "Scheda di lezione generata con successo!"
	case store.StatusFailed:
		return "Elaborazione fallita"
	}
	return string(status)
}

var pageFuncs = template.FuncMap{
	"statusLabel": statusLabel,
	"isCompleted": func(status store.Status) bool { return status == store.StatusCompleted },
}

const pageStyle = `
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            background: #0f172a;
            color: #e2e8f0;
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            min-height: 100vh;
            display: flex;
            flex-direction: column;
            align-items: center;
        }
        .container { max-width: 860px; width: 100%; padding: 2rem 1rem; }
        h1 { font-size: 1.6rem; margin-bottom: 0.5rem; }
        p.lead { color: #94a3b8; margin-bottom: 1.5rem; }
        form { display: flex; gap: 0.75rem; margin-bottom: 1.5rem; align-items: center; }
        label.force { color: #94a3b8; font-size: 0.875rem; white-space: nowrap; }
        input[type=url] {
            flex: 1;
            padding: 0.6rem 0.8rem;
            border-radius: 6px;
            border: 1px solid #334155;
            background: #1e293b;
            color: #e2e8f0;
        }
        button, .download-btn {
            background: #2563eb;
            color: #fff;
            border: none;
            border-radius: 6px;
            padding: 0.6rem 1.2rem;
            font-weight: 600;
            cursor: pointer;
            text-decoration: none;
            display: inline-block;
        }
        .error { color: #f87171; margin-bottom: 1rem; }
        .notice { color: #94a3b8; margin-bottom: 1rem; }
        .success { color: #4ade80; margin-bottom: 1rem; }
        table { width: 100%; border-collapse: collapse; font-size: 0.875rem; }
        th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #1e293b; }
        th { color: #94a3b8; font-weight: 600; }
        a { color: #60a5fa; }
        pre {
            background: #1e293b;
            border-radius: 8px;
            padding: 1rem;
            overflow-x: auto;
            white-space: pre-wrap;
            font-size: 0.8rem;
            margin: 1rem 0;
        }
        .meta { color: #94a3b8; font-size: 0.875rem; margin-bottom: 1rem; }
`

var homeTemplate = template.Must(template.New("home").Funcs(pageFuncs).Parse(`<!DOCTYPE html>
<html lang="it">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Lezioni-da-YouTube</title>
    <style>` + pageStyle + `</style>
</head>
<body>
    <div class="container">
        <h1>&#128218; Lezioni-da-YouTube</h1>
        <p class="lead">Inserisci l'URL di un video di YouTube e questa applicazione
        generer&agrave; automaticamente una scheda di lezione formattata e facile da studiare.</p>
        {{if .Error}}<p class="error">&#10060; {{.Error}}</p>{{end}}
        <form method="post" action="/lessons">
            <input type="url" name="url" placeholder="https://www.youtube.com/watch?v=..." autofocus>
            <button type="submit">&#128640; Genera Lezione</button>
            <label class="force"><input type="checkbox" name="force" value="true"> Rigenera</label>
        </form>
        {{if .Lessons}}
        <table>
            <tr><th>Video</th><th>Stato</th><th>Lingua</th><th>Parole</th><th></th></tr>
            {{range .Lessons}}
            <tr>
                <td><a href="/lessons/{{.ID}}">{{.VideoID}}</a></td>
                <td>{{statusLabel .Status}}</td>
                <td>{{.LanguageCode}}</td>
                <td>{{if .WordCount}}{{.WordCount}}{{end}}</td>
                <td>{{if isCompleted .Status}}<a href="/lessons/{{.ID}}/download">Scarica</a>{{end}}</td>
            </tr>
            {{end}}
        </table>
        {{else}}
        <p class="notice">Nessuna lezione generata finora.</p>
        {{end}}
    </div>
</body>
</html>
`))

var lessonTemplate = template.Must(template.New("lesson").Funcs(pageFuncs).Parse(`<!DOCTYPE html>
<html lang="it">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    {{if .Refresh}}<meta http-equiv="refresh" content="2">{{end}}
    <title>Lezione {{.Lesson.VideoID}} &mdash; Lezioni-da-YouTube</title>
    <style>` + pageStyle + `</style>
</head>
<body>
    <div class="container">
        <h1>&#128218; Scheda di Lezione</h1>
        <p class="meta">Video ID: <code>{{.Lesson.VideoID}}</code> &middot; <a href="/">nuova lezione</a></p>
        {{if .Lesson.Status.IsTerminal}}
            {{if isCompleted .Lesson.Status}}
                <p class="success">&#9989; {{statusLabel .Lesson.Status}}</p>
                <a class="download-btn" href="/lessons/{{.Lesson.ID}}/download">&#11015;&#65039; Scarica Scheda di Lezione (Markdown)</a>
                <pre>{{.Lesson.SheetMarkdown}}</pre>
            {{else}}
                <p class="error">&#10060; Errore: {{.Lesson.ErrorMessage}}</p>
            {{end}}
        {{else}}
            <p class="notice">&#128260; {{if .Lesson.ProgressMessage}}{{.Lesson.ProgressMessage}}{{else}}{{statusLabel .Lesson.Status}}{{end}}</p>
        {{end}}
    </div>
</body>
</html>
`))
