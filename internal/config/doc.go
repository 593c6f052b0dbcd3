// Package config loads, normalizes, and validates the TOML configuration
// shared by the daemon and the CLI. Lookup order is an explicit --config
// path, then ~/.config/lezione/config.toml, then a project-local
// lezione.toml. Missing files fall back to defaults so the tool works with
// zero configuration.
package config
