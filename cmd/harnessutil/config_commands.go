package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"harnessutil/internal/config"
	"harnessutil/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return services.Wrap(services.ErrConfiguration, "cli", "config init", "determine default config path", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return services.Wrap(services.ErrConfiguration, "cli", "config init", "resolve config path", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return services.Wrap(services.ErrIO, "cli", "config init", fmt.Sprintf("create config directory %q", dir), err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return services.Wrap(services.ErrValidation, "cli", "config init", fmt.Sprintf("config file already exists at %s (use --overwrite to replace it)", target), nil)
				} else if !os.IsNotExist(err) {
					return services.Wrap(services.ErrIO, "cli", "config init", "check config path", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return services.Wrap(services.ErrIO, "cli", "config init", "create sample config", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set notifications.webhook_url (or export WEBHOOK_URL) before sending notifications.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			switch {
			case cfg.Notifications.WebhookURL == "":
				fmt.Fprintf(out, "Webhook URL not set; notify requires --webhook or %s\n", cfg.Notifications.WebhookEnv)
			case cfg.Notifications.WebhookFromEnv():
				if err := config.ValidateWebhookURL(cfg.Notifications.WebhookURL); err != nil {
					fmt.Fprintf(out, "Warning: %s: %v; notify requires --webhook until it is fixed\n", cfg.Notifications.WebhookEnv, err)
				}
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Section", "Key", "Value"},
				configRows(cfg),
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func configRows(cfg *config.Config) [][]string {
	title := cases.Title(language.Und)
	section := func(name string) string {
		return title.String(name)
	}
	logDir := cfg.Logging.LogDir
	if logDir == "" {
		logDir = "(stderr only)"
	}
	return [][]string{
		{section("notifications"), "webhook_url", redactURL(cfg.Notifications.WebhookURL)},
		{section("notifications"), "webhook_env", cfg.Notifications.WebhookEnv},
		{section("notifications"), "default_channel", cfg.Notifications.DefaultChannel},
		{section("notifications"), "request_timeout", cfg.Notifications.RequestTimeoutDuration().String()},
		{section("notifications"), "dotenv_files", strings.Join(cfg.Notifications.DotenvFiles, ", ")},
		{section("tail"), "default_lines", strconv.Itoa(cfg.Tail.DefaultLines)},
		{section("tail"), "follow_wait", cfg.Tail.FollowWait().String()},
		{section("files"), "lock_resets", yesNo(cfg.Files.LockResets)},
		{section("logging"), "format", cfg.Logging.Format},
		{section("logging"), "level", cfg.Logging.Level},
		{section("logging"), "log_dir", logDir},
	}
}

// redactURL keeps the scheme and host of a webhook URL; the path usually
// carries the webhook secret.
func redactURL(raw string) string {
	if raw == "" {
		return "(not set)"
	}
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return "(set)"
	}
	host, _, hasPath := strings.Cut(rest, "/")
	if !hasPath {
		return raw
	}
	return scheme + "://" + host + "/***"
}
