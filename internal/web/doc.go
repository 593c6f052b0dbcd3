// Package web serves the browser front-end and the JSON API. The form page
// accepts a YouTube URL, enqueues a lesson, and redirects to a status page
// that refreshes until the sheet is ready for download. The /api endpoints
// expose the same operations for scripting, optionally behind a bearer token.
package web
