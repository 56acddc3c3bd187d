package worker

import (
	"fmt"
	"log/slog"
	"time"

	"news-digest/internal/pkg/config"
)

// Delivery channels accepted by DIGEST_CHANNEL.
const (
	ChannelFeishu  = "feishu"
	ChannelSlack   = "slack"
	ChannelDiscord = "discord"
)

// DigestConfig holds the pipeline and scheduling parameters of the digest worker.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// Example usage:
//
//	cfg, _ := LoadConfigFromEnv(logger, metrics)
//	svc := digest.NewService(..., digest.Options{PerFeedLimit: cfg.PerFeedLimit})
type DigestConfig struct {
	// PerFeedLimit is the maximum number of articles accepted per source per run.
	// Range: 1-50. Default: 4
	PerFeedLimit int

	// MaxContentChars is the truncation length of extracted text, in characters.
	// Range: 100-20000. Default: 3000
	MaxContentChars int

	// RecencyWindow is how far back an entry's publish time may lie.
	// Range: 1h-168h. Default: 24h
	RecencyWindow time.Duration

	// InterArticleDelay is the minimum spacing between two article starts.
	// Range: 0-60s. Zero disables pacing. Default: 1s
	InterArticleDelay time.Duration

	// ArticleConcurrency is the number of articles processed in parallel.
	// Range: 1-16. Default: 1
	ArticleConcurrency int

	// FeedConcurrency is the number of feeds fetched in parallel.
	// Range: 1-16. Default: 1
	FeedConcurrency int

	// RunTimeout bounds a single run.
	// Range: 1m-4h. Default: 30m
	RunTimeout time.Duration

	// CronSchedule is the 5-field cron expression used in schedule mode.
	// Default: "0 8 * * *"
	CronSchedule string

	// Timezone is the IANA timezone for the cron schedule and the card date.
	// Default: "Asia/Shanghai"
	Timezone string

	// Channel selects the delivery channel (feishu, slack, discord). Default: feishu
	Channel string

	// MetricsPort and HealthPort are the listen ports in schedule mode.
	// Range: 1024-65535. Defaults: 9090, 9091
	MetricsPort int
	HealthPort  int
}

// DefaultConfig returns a DigestConfig with the default values.
func DefaultConfig() DigestConfig {
	return DigestConfig{
		PerFeedLimit:       4,
		MaxContentChars:    3000,
		RecencyWindow:      24 * time.Hour,
		InterArticleDelay:  1 * time.Second,
		ArticleConcurrency: 1,
		FeedConcurrency:    1,
		RunTimeout:         30 * time.Minute,
		CronSchedule:       "0 8 * * *",     // Every day at 08:00
		Timezone:           "Asia/Shanghai", // CST
		Channel:            ChannelFeishu,
		MetricsPort:        9090,
		HealthPort:         9091,
	}
}

// Validate checks every field and returns all violations together.
func (c *DigestConfig) Validate() error {
	var errs []error

	if err := config.ValidateIntRange(c.PerFeedLimit, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("per feed limit: %w", err))
	}
	if err := config.ValidateIntRange(c.MaxContentChars, 100, 20000); err != nil {
		errs = append(errs, fmt.Errorf("max content chars: %w", err))
	}
	if err := config.ValidateDuration(c.RecencyWindow, time.Hour, 168*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("recency window: %w", err))
	}
	if err := config.ValidateDuration(c.InterArticleDelay, 0, time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("inter article delay: %w", err))
	}
	if err := config.ValidateIntRange(c.ArticleConcurrency, 1, 16); err != nil {
		errs = append(errs, fmt.Errorf("article concurrency: %w", err))
	}
	if err := config.ValidateIntRange(c.FeedConcurrency, 1, 16); err != nil {
		errs = append(errs, fmt.Errorf("feed concurrency: %w", err))
	}
	if err := config.ValidateDuration(c.RunTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := validateChannel(c.Channel); err != nil {
		errs = append(errs, fmt.Errorf("channel: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// Location returns the configured timezone, or UTC if it cannot be loaded.
func (c *DigestConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validateChannel(channel string) error {
	switch channel {
	case ChannelFeishu, ChannelSlack, ChannelDiscord:
		return nil
	}
	return fmt.Errorf("unknown channel %q (must be feishu, slack or discord)", channel)
}

func intRange(min, max int) func(int) error {
	return func(v int) error { return config.ValidateIntRange(v, min, max) }
}

func durationRange(min, max time.Duration) func(time.Duration) error {
	return func(d time.Duration) error { return config.ValidateDuration(d, min, max) }
}

// loader applies fallbacks uniformly: one warning log per warning and one
// metric increment per field.
type loader struct {
	logger          *slog.Logger
	metrics         *WorkerMetrics
	fallbackApplied bool
}

func track[T any](l *loader, field string, result config.LoadResult[T]) T {
	if result.FallbackApplied {
		l.fallbackApplied = true
		l.metrics.RecordFallback(field)
		for _, warning := range result.Warnings {
			l.logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}
	return result.Value
}

// LoadConfigFromEnv loads the worker configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// Environment variables:
//   - PER_FEED_LIMIT, MAX_CONTENT_CHARS, RECENCY_WINDOW, INTER_ARTICLE_DELAY
//   - ARTICLE_CONCURRENCY, FEED_CONCURRENCY, RUN_TIMEOUT
//   - CRON_SCHEDULE, DIGEST_TIMEZONE, DIGEST_CHANNEL
//   - METRICS_PORT, HEALTH_PORT
//
// The returned error is always nil (fail-open strategy).
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*DigestConfig, error) {
	cfg := DefaultConfig()
	l := &loader{logger: logger, metrics: metrics}

	cfg.PerFeedLimit = track(l, "per_feed_limit", config.LoadEnvInt("PER_FEED_LIMIT", cfg.PerFeedLimit, intRange(1, 50)))
	cfg.MaxContentChars = track(l, "max_content_chars", config.LoadEnvInt("MAX_CONTENT_CHARS", cfg.MaxContentChars, intRange(100, 20000)))
	cfg.RecencyWindow = track(l, "recency_window", config.LoadEnvDuration("RECENCY_WINDOW", cfg.RecencyWindow, durationRange(time.Hour, 168*time.Hour)))
	cfg.InterArticleDelay = track(l, "inter_article_delay", config.LoadEnvDuration("INTER_ARTICLE_DELAY", cfg.InterArticleDelay, durationRange(0, time.Minute)))
	cfg.ArticleConcurrency = track(l, "article_concurrency", config.LoadEnvInt("ARTICLE_CONCURRENCY", cfg.ArticleConcurrency, intRange(1, 16)))
	cfg.FeedConcurrency = track(l, "feed_concurrency", config.LoadEnvInt("FEED_CONCURRENCY", cfg.FeedConcurrency, intRange(1, 16)))
	cfg.RunTimeout = track(l, "run_timeout", config.LoadEnvDuration("RUN_TIMEOUT", cfg.RunTimeout, durationRange(time.Minute, 4*time.Hour)))
	cfg.CronSchedule = track(l, "cron_schedule", config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule))
	cfg.Timezone = track(l, "timezone", config.LoadEnvWithFallback("DIGEST_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	cfg.Channel = track(l, "channel", config.LoadEnvWithFallback("DIGEST_CHANNEL", cfg.Channel, validateChannel))
	cfg.MetricsPort = track(l, "metrics_port", config.LoadEnvInt("METRICS_PORT", cfg.MetricsPort, intRange(1024, 65535)))
	cfg.HealthPort = track(l, "health_port", config.LoadEnvInt("HEALTH_PORT", cfg.HealthPort, intRange(1024, 65535)))

	metrics.SetFallbackActive(l.fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return valid config (fail-open strategy)
	return &cfg, nil
}
