package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWeb(); err != nil {
		return err
	}
	if err := c.validateTranscript(); err != nil {
		return err
	}
	if err := c.validateLesson(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateWeb() error {
	if c.Web.Bind == "" {
		return errors.New("web.bind must be set")
	}
	if _, _, err := net.SplitHostPort(c.Web.Bind); err != nil {
		return fmt.Errorf("web.bind must be host:port: %w", err)
	}
	return nil
}

func (c *Config) validateTranscript() error {
	for _, lang := range c.Transcript.Languages {
		if len(lang) < 2 || len(lang) > 8 {
			return fmt.Errorf("transcript.languages: %q is not a language code", lang)
		}
	}
	if c.Transcript.FetchTimeout <= 0 {
		return errors.New("transcript.fetch_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLesson() error {
	if c.Lesson.PreviewChars <= 0 {
		return errors.New("lesson.preview_chars must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.PollInterval <= 0 {
		return errors.New("workflow.poll_interval must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
