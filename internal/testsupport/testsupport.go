// Package testsupport provides shared helpers for package tests: configs
// seeded with per-test temp directories and pre-opened stores.
package testsupport

import (
	"path/filepath"
	"testing"

	"lezione/internal/config"
	"lezione/internal/store"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Web.Bind = "127.0.0.1:0"
	cfg.Workflow.PollInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithLanguages overrides the preferred transcript languages.
func WithLanguages(langs ...string) ConfigOption {
	return func(c *config.Config) {
		c.Transcript.Languages = langs
	}
}

// WithAPIToken sets the web API token on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(c *config.Config) {
		c.Web.APIToken = token
	}
}

// MustOpenStore opens the lesson store for the config and closes it when
// the test finishes.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}
