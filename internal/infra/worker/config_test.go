package worker

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var digestEnvKeys = []string{
	"PER_FEED_LIMIT", "MAX_CONTENT_CHARS", "RECENCY_WINDOW", "INTER_ARTICLE_DELAY",
	"ARTICLE_CONCURRENCY", "FEED_CONCURRENCY", "RUN_TIMEOUT", "CRON_SCHEDULE",
	"DIGEST_TIMEZONE", "DIGEST_CHANNEL", "METRICS_PORT", "HEALTH_PORT",
}

func clearDigestEnv(t *testing.T) {
	t.Helper()
	for _, key := range digestEnvKeys {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 4, cfg.PerFeedLimit)
	assert.Equal(t, 3000, cfg.MaxContentChars)
	assert.Equal(t, 24*time.Hour, cfg.RecencyWindow)
	assert.Equal(t, time.Second, cfg.InterArticleDelay)
	assert.Equal(t, 1, cfg.ArticleConcurrency)
	assert.Equal(t, 1, cfg.FeedConcurrency)
	assert.Equal(t, 30*time.Minute, cfg.RunTimeout)
	assert.Equal(t, "0 8 * * *", cfg.CronSchedule)
	assert.Equal(t, "Asia/Shanghai", cfg.Timezone)
	assert.Equal(t, ChannelFeishu, cfg.Channel)
	assert.Equal(t, 9090, cfg.MetricsPort)
	assert.Equal(t, 9091, cfg.HealthPort)

	assert.NoError(t, cfg.Validate())
}

func TestDigestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DigestConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*DigestConfig) {}},
		{name: "zero delay allowed", mutate: func(c *DigestConfig) { c.InterArticleDelay = 0 }},
		{name: "limit boundary", mutate: func(c *DigestConfig) { c.PerFeedLimit = 50 }},
		{name: "limit zero", mutate: func(c *DigestConfig) { c.PerFeedLimit = 0 }, wantErr: "per feed limit"},
		{name: "content too short", mutate: func(c *DigestConfig) { c.MaxContentChars = 99 }, wantErr: "max content chars"},
		{name: "window too long", mutate: func(c *DigestConfig) { c.RecencyWindow = 169 * time.Hour }, wantErr: "recency window"},
		{name: "negative delay", mutate: func(c *DigestConfig) { c.InterArticleDelay = -time.Second }, wantErr: "inter article delay"},
		{name: "concurrency too high", mutate: func(c *DigestConfig) { c.ArticleConcurrency = 17 }, wantErr: "article concurrency"},
		{name: "feed concurrency zero", mutate: func(c *DigestConfig) { c.FeedConcurrency = 0 }, wantErr: "feed concurrency"},
		{name: "run timeout too short", mutate: func(c *DigestConfig) { c.RunTimeout = time.Second }, wantErr: "run timeout"},
		{name: "bad cron", mutate: func(c *DigestConfig) { c.CronSchedule = "every day" }, wantErr: "cron schedule"},
		{name: "bad timezone", mutate: func(c *DigestConfig) { c.Timezone = "Mars/Base" }, wantErr: "timezone"},
		{name: "bad channel", mutate: func(c *DigestConfig) { c.Channel = "email" }, wantErr: "channel"},
		{name: "privileged port", mutate: func(c *DigestConfig) { c.MetricsPort = 80 }, wantErr: "metrics port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDigestConfig_Location(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "Asia/Shanghai", cfg.Location().String())

	cfg.Timezone = "nowhere"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadConfigFromEnv_AllEnvVarsValid(t *testing.T) {
	clearDigestEnv(t)
	t.Setenv("PER_FEED_LIMIT", "6")
	t.Setenv("MAX_CONTENT_CHARS", "2500")
	t.Setenv("RECENCY_WINDOW", "48h")
	t.Setenv("INTER_ARTICLE_DELAY", "0s")
	t.Setenv("ARTICLE_CONCURRENCY", "4")
	t.Setenv("FEED_CONCURRENCY", "8")
	t.Setenv("RUN_TIMEOUT", "1h")
	t.Setenv("CRON_SCHEDULE", "30 7 * * 1-5")
	t.Setenv("DIGEST_TIMEZONE", "UTC")
	t.Setenv("DIGEST_CHANNEL", "slack")
	t.Setenv("METRICS_PORT", "8080")
	t.Setenv("HEALTH_PORT", "8081")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	metrics := NewWorkerMetrics()

	cfg, err := LoadConfigFromEnv(logger, metrics)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.PerFeedLimit)
	assert.Equal(t, 2500, cfg.MaxContentChars)
	assert.Equal(t, 48*time.Hour, cfg.RecencyWindow)
	assert.Equal(t, time.Duration(0), cfg.InterArticleDelay)
	assert.Equal(t, 4, cfg.ArticleConcurrency)
	assert.Equal(t, 8, cfg.FeedConcurrency)
	assert.Equal(t, time.Hour, cfg.RunTimeout)
	assert.Equal(t, "30 7 * * 1-5", cfg.CronSchedule)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, ChannelSlack, cfg.Channel)
	assert.Equal(t, 8080, cfg.MetricsPort)
	assert.Equal(t, 8081, cfg.HealthPort)

	assert.Zero(t, buf.Len(), "expected no warnings, got: %s", buf.String())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.FallbackActive))
	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), 0.0)
}

func TestLoadConfigFromEnv_MissingEnvVars(t *testing.T) {
	clearDigestEnv(t)

	var buf bytes.Buffer
	cfg, err := LoadConfigFromEnv(slog.New(slog.NewJSONHandler(&buf, nil)), NewWorkerMetrics())
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), *cfg)
	assert.Zero(t, buf.Len())
}

func TestLoadConfigFromEnv_InvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		field string
		check func(*testing.T, *DigestConfig)
	}{
		{"limit out of range", "PER_FEED_LIMIT", "100", "per_feed_limit", func(t *testing.T, c *DigestConfig) { assert.Equal(t, 4, c.PerFeedLimit) }},
		{"limit not a number", "PER_FEED_LIMIT", "four", "per_feed_limit", func(t *testing.T, c *DigestConfig) { assert.Equal(t, 4, c.PerFeedLimit) }},
		{"window unparsable", "RECENCY_WINDOW", "a day", "recency_window", func(t *testing.T, c *DigestConfig) { assert.Equal(t, 24*time.Hour, c.RecencyWindow) }},
		{"delay too long", "INTER_ARTICLE_DELAY", "2m", "inter_article_delay", func(t *testing.T, c *DigestConfig) { assert.Equal(t, time.Second, c.InterArticleDelay) }},
		{"bad cron", "CRON_SCHEDULE", "invalid cron", "cron_schedule", func(t *testing.T, c *DigestConfig) { assert.Equal(t, "0 8 * * *", c.CronSchedule) }},
		{"bad timezone", "DIGEST_TIMEZONE", "Invalid/Zone", "timezone", func(t *testing.T, c *DigestConfig) { assert.Equal(t, "Asia/Shanghai", c.Timezone) }},
		{"bad channel", "DIGEST_CHANNEL", "pager", "channel", func(t *testing.T, c *DigestConfig) { assert.Equal(t, ChannelFeishu, c.Channel) }},
		{"bad port", "HEALTH_PORT", "70000", "health_port", func(t *testing.T, c *DigestConfig) { assert.Equal(t, 9091, c.HealthPort) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearDigestEnv(t)
			t.Setenv(tt.key, tt.value)

			var buf bytes.Buffer
			metrics := NewWorkerMetrics()
			cfg, err := LoadConfigFromEnv(slog.New(slog.NewJSONHandler(&buf, nil)), metrics)
			require.NoError(t, err)

			tt.check(t, cfg)
			assert.True(t, strings.Contains(buf.String(), "Configuration fallback applied"))
			assert.Contains(t, buf.String(), tt.key)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues(tt.field)))
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackActive))
			assert.NoError(t, cfg.Validate())
		})
	}
}
