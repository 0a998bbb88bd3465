package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func (c *Config) normalize() error {
	if err := c.normalizeNotifications(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeNotifications() error {
	c.Notifications.WebhookURL = strings.TrimSpace(c.Notifications.WebhookURL)
	c.Notifications.WebhookEnv = strings.TrimSpace(c.Notifications.WebhookEnv)
	if c.Notifications.WebhookEnv == "" {
		c.Notifications.WebhookEnv = defaultWebhookEnv
	}
	c.Notifications.DefaultChannel = strings.TrimSpace(c.Notifications.DefaultChannel)
	if c.Notifications.DefaultChannel == "" {
		c.Notifications.DefaultChannel = defaultChannel
	}

	files := make([]string, 0, len(c.Notifications.DotenvFiles))
	for _, file := range c.Notifications.DotenvFiles {
		if strings.TrimSpace(file) == "" {
			continue
		}
		expanded, err := expandPath(strings.TrimSpace(file))
		if err != nil {
			return fmt.Errorf("notifications.dotenv_files: %w", err)
		}
		files = append(files, expanded)
	}
	c.Notifications.DotenvFiles = files

	if c.Notifications.WebhookURL != "" {
		return nil
	}
	if err := loadDotenv(files); err != nil {
		return err
	}
	if value, ok := os.LookupEnv(c.Notifications.WebhookEnv); ok {
		c.Notifications.WebhookURL = strings.TrimSpace(value)
		c.Notifications.webhookFromEnv = c.Notifications.WebhookURL != ""
	}
	return nil
}

// loadDotenv loads each existing file; variables already set in the process
// environment win over file values.
func loadDotenv(files []string) error {
	for _, file := range files {
		info, err := os.Stat(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("stat dotenv file %s: %w", file, err)
		}
		if info.IsDir() {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load dotenv file %s: %w", file, err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.LogDir) == "" {
		c.Logging.LogDir = ""
		return nil
	}
	var err error
	if c.Logging.LogDir, err = expandPath(strings.TrimSpace(c.Logging.LogDir)); err != nil {
		return fmt.Errorf("logging.log_dir: %w", err)
	}
	return nil
}
