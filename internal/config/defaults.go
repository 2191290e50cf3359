package config

const (
	defaultBaseURL               = "http://localhost:8000"
	defaultTimeoutSeconds        = 30
	defaultDetailIntervalSeconds = 4
	defaultListIntervalSeconds   = 5
	defaultStateDir              = "~/.local/share/lectureiq"
	defaultLogDir                = "~/.local/share/lectureiq/logs"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Polling: Polling{
			DetailIntervalSeconds: defaultDetailIntervalSeconds,
			ListIntervalSeconds:   defaultListIntervalSeconds,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
