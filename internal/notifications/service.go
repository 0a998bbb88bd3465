package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"harnessutil/internal/config"
	"harnessutil/internal/logging"
	"harnessutil/internal/services"
)

const (
	userAgent       = "harnessutil/0.1.0"
	responseLogSize = 4096
	testMessage     = "harnessutil notification test"
)

// Service defines the notification surface exposed to harness code.
type Service interface {
	Send(ctx context.Context, channel, message, webhookOverride string) error
	TestNotification(ctx context.Context) error
}

// payload is the webhook request body.
type payload struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// Request is a single resolved notification.
type Request struct {
	Channel    string
	Message    string
	WebhookURL string
}

// Option customizes the webhook service.
type Option func(*webhookService)

// WithHTTPClient replaces the HTTP client used for webhook calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *webhookService) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLogger sets the logger that receives webhook responses.
func WithLogger(logger *slog.Logger) Option {
	return func(s *webhookService) {
		s.logger = logging.NewComponentLogger(logger, "notifier")
	}
}

// NewService builds a webhook notifier from the resolved configuration. An
// empty webhook URL is allowed here; Send reports it unless the caller passes
// an override.
func NewService(cfg *config.Config, opts ...Option) Service {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	svc := &webhookService{
		webhookURL:     strings.TrimSpace(cfg.Notifications.WebhookURL),
		defaultChannel: strings.TrimSpace(cfg.Notifications.DefaultChannel),
		client:         &http.Client{Timeout: cfg.Notifications.RequestTimeoutDuration()},
		logger:         logging.NewComponentLogger(nil, "notifier"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type webhookService struct {
	webhookURL     string
	defaultChannel string
	client         *http.Client
	logger         *slog.Logger
}

// resolve validates the inputs and picks the webhook URL for one call.
func (s *webhookService) resolve(channel, message, webhookOverride string) (Request, error) {
	if strings.TrimSpace(channel) == "" {
		return Request{}, services.Wrap(services.ErrValidation, "notifications", "send", "channel is required", nil)
	}
	if strings.TrimSpace(message) == "" {
		return Request{}, services.Wrap(services.ErrValidation, "notifications", "send", "message is required", nil)
	}
	target := strings.TrimSpace(webhookOverride)
	if target == "" {
		target = s.webhookURL
	}
	if target == "" {
		return Request{}, services.Wrap(services.ErrConfiguration, "notifications", "send", "webhook url is not configured", nil)
	}
	if err := config.ValidateWebhookURL(target); err != nil {
		return Request{}, services.Wrap(services.ErrConfiguration, "notifications", "send", "invalid webhook url", err)
	}
	return Request{Channel: channel, Message: message, WebhookURL: target}, nil
}

func (s *webhookService) Send(ctx context.Context, channel, message, webhookOverride string) error {
	req, err := s.resolve(channel, message, webhookOverride)
	if err != nil {
		return err
	}
	return s.post(ctx, req)
}

func (s *webhookService) TestNotification(ctx context.Context) error {
	return s.Send(ctx, s.defaultChannel, testMessage, "")
}

func (s *webhookService) post(ctx context.Context, data Request) error {
	body, err := json.Marshal(payload{Channel: data.Channel, Text: data.Message})
	if err != nil {
		return services.Wrap(services.ErrValidation, "notifications", "encode payload", "", err)
	}

	requestID := uuid.NewString()
	ctx = services.WithRequestID(ctx, requestID)
	ctx = services.WithChannel(ctx, data.Channel)
	logger := logging.WithContext(ctx, s.logger)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, data.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "notifications", "build request", "invalid webhook url", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error("webhook post failed", logging.Error(err))
		return services.Wrap(services.ErrNetwork, "notifications", "send", "post webhook", err)
	}
	defer resp.Body.Close()

	output, readErr := io.ReadAll(io.LimitReader(resp.Body, responseLogSize))
	_, _ = io.Copy(io.Discard, resp.Body)

	attrs := []any{
		slog.Int("status", resp.StatusCode),
		slog.String("response", strings.TrimSpace(string(output))),
	}
	if readErr != nil {
		attrs = append(attrs, slog.String("read_error", readErr.Error()))
	}
	if resp.StatusCode >= 300 {
		logger.Warn(fmt.Sprintf("webhook answered %s", resp.Status), attrs...)
		return nil
	}
	logger.Info("webhook delivered", attrs...)
	return nil
}
