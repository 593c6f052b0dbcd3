// Package workflow runs the background lesson pipeline. A single loop claims
// pending lessons from the store, fetches the caption transcript, renders the
// lesson sheet, and records the outcome. The daemon owns the manager's
// lifecycle; the web and IPC surfaces only enqueue work and read state.
package workflow
