// Package main hosts the lezione CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC calls
// against the daemon: lesson submission, listing, export, retries, daemon
// lifecycle, and configuration scaffolding. Configuration resolution and
// socket discovery are centralized in commandContext so subcommands stay
// declarative.
package main
