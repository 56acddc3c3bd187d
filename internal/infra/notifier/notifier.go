// Package notifier delivers the composed digest to a chat webhook.
// It includes implementations for Feishu interactive cards, Slack Block Kit,
// Discord embeds and a stdout writer for dry runs. Deliveries are never retried.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"news-digest/internal/observability/logging"
	"news-digest/internal/observability/metrics"
	"news-digest/internal/pkg/config"
	"news-digest/internal/usecase/digest"
)

// Channel names accepted by DIGEST_CHANNEL.
const (
	ChannelFeishu  = "feishu"
	ChannelSlack   = "slack"
	ChannelDiscord = "discord"
	ChannelStdout  = "stdout"
)

// DefaultTimeout bounds one webhook request.
const DefaultTimeout = 30 * time.Second

// WebhookConfig contains configuration for a webhook notifier.
type WebhookConfig struct {
	// WebhookURL is the incoming webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for webhook calls
	Timeout time.Duration
}

// WebhookEnv returns the environment variable holding the webhook URL of a channel,
// or "" for channels that need none.
func WebhookEnv(channel string) string {
	switch channel {
	case ChannelFeishu:
		return "FEISHU_WEBHOOK_URL"
	case ChannelSlack:
		return "SLACK_WEBHOOK_URL"
	case ChannelDiscord:
		return "DISCORD_WEBHOOK_URL"
	}
	return ""
}

// ValidateWebhookURL checks that a webhook URL is an absolute https URL.
func ValidateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("webhook URL must use HTTPS")
	}
	if u.Host == "" {
		return fmt.Errorf("webhook URL must have a host")
	}
	return nil
}

// LoadConfigFromEnv reads the webhook URL of channel and NOTIFY_TIMEOUT.
func LoadConfigFromEnv(logger *slog.Logger, channel string) WebhookConfig {
	cfg := WebhookConfig{Timeout: DefaultTimeout}

	timeout := config.LoadEnvDuration("NOTIFY_TIMEOUT", cfg.Timeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Second, 2*time.Minute)
	})
	for _, w := range timeout.Warnings {
		logger.Warn("Configuration fallback applied", slog.String("component", "notifier"), slog.String("warning", w))
	}
	cfg.Timeout = timeout.Value

	if env := WebhookEnv(channel); env != "" {
		cfg.WebhookURL = strings.TrimSpace(config.LoadEnvString(env, ""))
	}
	return cfg
}

// New creates the notifier for channel.
func New(channel string, cfg WebhookConfig) (digest.Notifier, error) {
	if channel != ChannelStdout && cfg.WebhookURL == "" {
		return nil, fmt.Errorf("%s is required for channel %q", WebhookEnv(channel), channel)
	}

	switch channel {
	case ChannelFeishu:
		return NewFeishuNotifier(cfg), nil
	case ChannelSlack:
		return NewSlackNotifier(cfg), nil
	case ChannelDiscord:
		return NewDiscordNotifier(cfg), nil
	case ChannelStdout:
		return NewStdoutNotifier(nil), nil
	}
	return nil, fmt.Errorf("unknown channel %q", channel)
}

// record logs and counts one delivery attempt.
func record(ctx context.Context, channel, requestID string, err error, duration time.Duration) {
	logger := logging.FromContext(ctx).With(
		slog.String("channel", channel),
		slog.String("request_id", requestID),
		slog.Duration("duration", duration))

	metrics.RecordDelivery(channel, err == nil)
	if err != nil {
		logger.Warn("webhook delivery failed", slog.Any("error", err))
		return
	}
	logger.Info("webhook delivery successful")
}

func newRequestID() string {
	return uuid.New().String()
}
