// Package store persists lesson requests and their generated sheets in a
// SQLite database. Each lesson moves through a small lifecycle (pending,
// fetching, fetched, rendering, completed, failed) driven by the workflow
// manager; the store validates transitions and keeps enough metadata for
// the web front-end and CLI to describe progress.
package store
