package renderer

import (
	"log/slog"
	"time"

	"news-digest/internal/pkg/config"
)

// Config holds the configuration of the headless browser renderer.
type Config struct {
	// Enabled turns the rendered extraction tier on. Default: true
	Enabled bool

	// Timeout bounds one render including browser start-up. Default: 30s
	Timeout time.Duration

	// SettleDelay is how long to wait after DOMContentLoaded for scripts to
	// populate the page. Default: 3s
	SettleDelay time.Duration

	// UserAgent is sent by the browser.
	UserAgent string

	// ExecPath is the Chromium binary. Empty means chromedp's lookup on PATH.
	ExecPath string

	// RemoteURL is the DevTools websocket of an already running browser
	// (e.g. a chromedp/headless-shell sidecar). When set, no local browser is launched.
	RemoteURL string
}

// DefaultUserAgent matches a recent desktop Chrome.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultConfig returns the default renderer configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		Timeout:     30 * time.Second,
		SettleDelay: 3 * time.Second,
		UserAgent:   DefaultUserAgent,
	}
}

// LoadConfigFromEnv loads the renderer configuration with fail-open fallbacks.
//
// Environment variables:
//   - RENDER_ENABLED: "true" or "false" (default: true)
//   - RENDER_TIMEOUT: duration 5s-5m (default: 30s)
//   - RENDER_SETTLE_DELAY: duration 0-30s (default: 3s)
//   - CHROME_PATH: Chromium binary path (default: lookup on PATH)
//   - CHROME_REMOTE_URL: DevTools websocket URL of a remote browser
func LoadConfigFromEnv(logger *slog.Logger) Config {
	cfg := DefaultConfig()

	warn := func(warnings []string) {
		for _, w := range warnings {
			logger.Warn("Configuration fallback applied", slog.String("component", "renderer"), slog.String("warning", w))
		}
	}

	enabled := config.LoadEnvBool("RENDER_ENABLED", cfg.Enabled)
	warn(enabled.Warnings)
	cfg.Enabled = enabled.Value

	timeout := config.LoadEnvDuration("RENDER_TIMEOUT", cfg.Timeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 5*time.Second, 5*time.Minute)
	})
	warn(timeout.Warnings)
	cfg.Timeout = timeout.Value

	settle := config.LoadEnvDuration("RENDER_SETTLE_DELAY", cfg.SettleDelay, func(d time.Duration) error {
		return config.ValidateDuration(d, 0, 30*time.Second)
	})
	warn(settle.Warnings)
	cfg.SettleDelay = settle.Value

	cfg.ExecPath = config.LoadEnvString("CHROME_PATH", "")
	cfg.RemoteURL = config.LoadEnvString("CHROME_REMOTE_URL", "")

	return cfg
}
