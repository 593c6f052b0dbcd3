package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lezione/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Web.Bind != "127.0.0.1:7519" {
		t.Fatalf("unexpected default bind %q", cfg.Web.Bind)
	}
	if got := cfg.Transcript.Languages; len(got) != 2 || got[0] != "it" || got[1] != "en" {
		t.Fatalf("unexpected default languages %v", got)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[web]
bind = "0.0.0.0:8080"

[transcript]
languages = [" IT ", "en", ""]

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Web.Bind != "0.0.0.0:8080" {
		t.Fatalf("unexpected bind %q", cfg.Web.Bind)
	}
	if got := cfg.Transcript.Languages; len(got) != 2 || got[0] != "it" {
		t.Fatalf("languages not normalized: %v", got)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format not lowered: %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty bind", func(c *config.Config) { c.Web.Bind = "" }, "web.bind"},
		{"bad bind", func(c *config.Config) { c.Web.Bind = "no-port" }, "web.bind"},
		{"bad language", func(c *config.Config) { c.Transcript.Languages = []string{"x"} }, "transcript.languages"},
		{"bad format", func(c *config.Config) { c.Logging.Format = "yaml" }, "logging.format"},
		{"bad poll", func(c *config.Config) { c.Workflow.PollInterval = 0 }, "workflow.poll_interval"},
		{"bad preview", func(c *config.Config) { c.Lesson.PreviewChars = -1 }, "lesson.preview_chars"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config did not load: exists=%v err=%v", exists, err)
	}
}
