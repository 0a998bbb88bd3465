// Package services defines the error taxonomy and context helpers shared by
// the notifier, tail reader, and file reset helpers.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so callers can classify a
//     failure with errors.Is while keeping the underlying cause.
//   - Exit code mapping used by the CLI.
//   - Context helpers that stamp correlation identifiers for logging.
package services
