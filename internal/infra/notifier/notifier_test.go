package notifier

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-digest/internal/usecase/digest"
)

func TestNew(t *testing.T) {
	cfg := WebhookConfig{WebhookURL: "https://open.feishu.cn/open-apis/bot/v2/hook/x"}

	n, err := New(ChannelFeishu, cfg)
	require.NoError(t, err)
	assert.IsType(t, &FeishuNotifier{}, n)

	n, err = New(ChannelSlack, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SlackNotifier{}, n)

	n, err = New(ChannelDiscord, cfg)
	require.NoError(t, err)
	assert.IsType(t, &DiscordNotifier{}, n)

	n, err = New(ChannelStdout, WebhookConfig{})
	require.NoError(t, err)
	assert.IsType(t, &StdoutNotifier{}, n)
}

func TestNew_MissingWebhook(t *testing.T) {
	_, err := New(ChannelFeishu, WebhookConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEISHU_WEBHOOK_URL")

	_, err = New("pigeon", WebhookConfig{WebhookURL: "https://x"})
	assert.Error(t, err)
}

func TestLoadConfigFromEnv(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	t.Setenv("SLACK_WEBHOOK_URL", " https://hooks.slack.com/services/T/B/x ")
	t.Setenv("NOTIFY_TIMEOUT", "10s")

	cfg := LoadConfigFromEnv(logger, ChannelSlack)

	assert.Equal(t, "https://hooks.slack.com/services/T/B/x", cfg.WebhookURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoadConfigFromEnv_InvalidTimeout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	t.Setenv("NOTIFY_TIMEOUT", "1h")

	cfg := LoadConfigFromEnv(logger, ChannelStdout)

	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.WebhookURL)
}

func TestStdoutNotifier_Send(t *testing.T) {
	var buf bytes.Buffer
	d := sampleDigest()

	require.NoError(t, NewStdoutNotifier(&buf).Send(context.Background(), d))

	out := buf.String()
	assert.Contains(t, out, "🔔 今日新闻摘要 (2025-06-02)")
	assert.Contains(t, out, d.Body)
	assert.Contains(t, out, digest.DefaultFooter)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3, "..."))
	assert.Equal(t, "a...", truncate("abcdef", 4, "..."))
	assert.Equal(t, "..", truncate("abcdef", 2, "..."))
	assert.Equal(t, "中文...", truncate("中文内容很长", 5, "..."))
}

func TestValidateWebhookURL(t *testing.T) {
	assert.NoError(t, ValidateWebhookURL("https://open.feishu.cn/open-apis/bot/v2/hook/abc"))
	assert.Error(t, ValidateWebhookURL("http://open.feishu.cn/open-apis/bot/v2/hook/abc"))
	assert.Error(t, ValidateWebhookURL("https://"))
	assert.Error(t, ValidateWebhookURL("://bad"))
}
