// Package logging assembles structured slog loggers for harnessutil.
//
// It owns the console and JSON handlers, maps configured levels, and can fan
// records out to a JSON log file next to the console output. Context helpers
// tag lines with the notification channel and correlation ID so a single
// webhook call can be followed through the logs. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
