// Package notifications posts chat messages to an operator-configured webhook.
//
// The webhook URL is resolved once by the config package and handed to
// NewService; a per-call override wins when non-blank. Each Send issues a
// single JSON POST in the Slack incoming-webhook shape ({"channel","text"}),
// logs whatever the endpoint answers, and never retries. Failures carry one
// of the services error markers so callers can tell a missing URL from a
// transport failure.
package notifications
