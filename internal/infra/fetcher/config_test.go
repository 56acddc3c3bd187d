package fetcher

import (
	"bytes"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseIP(t *testing.T, s string) net.IP {
	t.Helper()
	ip := net.ParseIP(s)
	require.NotNil(t, ip, s)
	return ip
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxBodySize)
	assert.Equal(t, 5, cfg.MaxRedirects)
	assert.True(t, cfg.DenyPrivateIPs)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"timeout too short", func(c *Config) { c.Timeout = 10 * time.Millisecond }},
		{"body too small", func(c *Config) { c.MaxBodySize = 10 }},
		{"body too large", func(c *Config) { c.MaxBodySize = 200 * 1024 * 1024 }},
		{"negative redirects", func(c *Config) { c.MaxRedirects = -1 }},
		{"empty user agent", func(c *Config) { c.UserAgent = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CONTENT_FETCH_TIMEOUT", "20s")
	t.Setenv("CONTENT_FETCH_MAX_BODY_SIZE", "2048")
	t.Setenv("CONTENT_FETCH_MAX_REDIRECTS", "99")
	t.Setenv("CONTENT_FETCH_DENY_PRIVATE_IPS", "false")
	t.Setenv("CONTENT_FETCH_USER_AGENT", "TestAgent/1.0")

	var buf bytes.Buffer
	cfg := LoadConfigFromEnv(slog.New(slog.NewJSONHandler(&buf, nil)))

	assert.Equal(t, 20*time.Second, cfg.Timeout)
	assert.Equal(t, int64(2048), cfg.MaxBodySize)
	assert.Equal(t, 5, cfg.MaxRedirects, "out of range value falls back to default")
	assert.False(t, cfg.DenyPrivateIPs)
	assert.Equal(t, "TestAgent/1.0", cfg.UserAgent)
	assert.Contains(t, buf.String(), "CONTENT_FETCH_MAX_REDIRECTS")
	assert.NoError(t, cfg.Validate())
}
