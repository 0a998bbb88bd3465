package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. A missing webhook URL is not
// a validation failure, and a URL read from the environment is left to the
// notifier: commands that do not notify must still run.
func (c *Config) Validate() error {
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateTail(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	if c.Notifications.WebhookURL == "" || c.Notifications.webhookFromEnv {
		return nil
	}
	return ValidateWebhookURL(c.Notifications.WebhookURL)
}

// ValidateWebhookURL checks that value is an absolute http(s) URL.
func ValidateWebhookURL(value string) error {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("webhook url must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("webhook url must include a host")
	}
	return nil
}

func (c *Config) validateTail() error {
	if c.Tail.DefaultLines <= 0 {
		return errors.New("tail.default_lines must be positive")
	}
	if c.Tail.FollowWaitSeconds < 0 {
		return errors.New("tail.follow_wait_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
