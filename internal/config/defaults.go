package config

const (
	defaultDataDir             = "~/.local/share/lezione"
	defaultLogDir              = "~/.local/share/lezione/logs"
	defaultWebBind             = "127.0.0.1:7519"
	defaultFetchTimeout        = 30
	defaultPreviewChars        = 500
	defaultNotifyTimeout       = 10
	defaultWorkflowPollSeconds = 2
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Web: Web{
			Bind: defaultWebBind,
		},
		Transcript: Transcript{
			Languages:    []string{"it", "en"},
			FetchTimeout: defaultFetchTimeout,
		},
		Lesson: Lesson{
			PreviewChars: defaultPreviewChars,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completed:      true,
			Errors:         true,
		},
		Workflow: Workflow{
			PollInterval: defaultWorkflowPollSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
