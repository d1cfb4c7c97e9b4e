package config

const (
	defaultConfigPath            = "~/.config/karaparty/config.toml"
	defaultDataDir               = "~/.local/share/karaparty"
	defaultAPIBind               = "127.0.0.1:7491"
	defaultDispatchCount         = 3
	defaultDispatchInterval      = 60
	defaultLogBackend            = LogBackendJSON
	defaultYouTubeBaseURL        = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeTimeout        = 30
	defaultYouTubeRetryAttempts  = 3
	defaultNotifyRequestTimeout  = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
	defaultJSONDispatchLogName   = "dispatched.json"
	defaultSQLiteDispatchLogName = "dispatched.db"
)

// Dispatch log backends.
const (
	LogBackendJSON   = "json"
	LogBackendSQLite = "sqlite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			APIBind: defaultAPIBind,
		},
		Dispatch: Dispatch{
			Count:           defaultDispatchCount,
			IntervalSeconds: defaultDispatchInterval,
			LogBackend:      defaultLogBackend,
		},
		YouTube: YouTube{
			BaseURL:        defaultYouTubeBaseURL,
			TimeoutSeconds: defaultYouTubeTimeout,
			RetryAttempts:  defaultYouTubeRetryAttempts,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Dispatched:     true,
			CycleSummary:   false,
			UploadErrors:   true,
			Warnings:       true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
