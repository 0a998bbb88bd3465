package config

import "time"

const (
	defaultConfigPath        = "~/.config/harnessutil/config.toml"
	projectConfigName        = "harnessutil.toml"
	defaultWebhookEnv        = "WEBHOOK_URL"
	defaultChannel           = "#harness"
	defaultRequestTimeout    = 10
	defaultDotenvFile        = ".env"
	defaultTailLines         = 20
	defaultFollowWaitSeconds = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Notifications: Notifications{
			WebhookEnv:     defaultWebhookEnv,
			DefaultChannel: defaultChannel,
			RequestTimeout: defaultRequestTimeout,
			DotenvFiles:    []string{defaultDotenvFile},
		},
		Tail: Tail{
			DefaultLines:      defaultTailLines,
			FollowWaitSeconds: defaultFollowWaitSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// RequestTimeoutDuration returns the notifier HTTP timeout as a duration.
func (n Notifications) RequestTimeoutDuration() time.Duration {
	if n.RequestTimeout <= 0 {
		return defaultRequestTimeout * time.Second
	}
	return time.Duration(n.RequestTimeout) * time.Second
}

// FollowWait returns how long follow-mode tailing waits for new lines.
func (t Tail) FollowWait() time.Duration {
	if t.FollowWaitSeconds <= 0 {
		return 0
	}
	return time.Duration(t.FollowWaitSeconds) * time.Second
}
