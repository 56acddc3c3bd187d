package fetcher

import (
	"fmt"
	"log/slog"
	"time"

	"news-digest/internal/pkg/config"
)

// DefaultUserAgent is a desktop browser User-Agent. Several news sites serve
// bot User-Agents a consent wall or an empty shell.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Config holds the configuration of the static page fetcher.
//
// Security settings:
//   - DenyPrivateIPs: Prevents SSRF by blocking private IP addresses
//   - MaxBodySize: Prevents memory exhaustion from oversized responses
//   - MaxRedirects: Prevents infinite redirect loops
//   - Timeout: Prevents resource starvation from slow servers
type Config struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Default: 15s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Enforced while reading, not based on Content-Length.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// MaxRedirects is the maximum number of HTTP redirects to follow.
	// Each redirect target is validated like the original URL.
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs blocks URLs resolving to private/loopback/link-local IPs.
	// Default: true
	DenyPrivateIPs bool

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        15 * time.Second,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      DefaultUserAgent,
	}
}

// Validate checks if the configuration values are valid and safe.
//
// Validation rules:
//   - Timeout: 1s-2m
//   - MaxBodySize: 1KB-100MB
//   - MaxRedirects: 0-10
//   - UserAgent: non-empty
func (c *Config) Validate() error {
	if err := config.ValidateDuration(c.Timeout, time.Second, 2*time.Minute); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if err := config.ValidateIntRange(c.MaxRedirects, 0, 10); err != nil {
		return fmt.Errorf("max redirects: %w", err)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}

	return nil
}

// LoadConfigFromEnv loads the fetcher configuration from environment variables.
// Invalid values fall back to the defaults with a warning log.
//
// Environment variables:
//   - CONTENT_FETCH_TIMEOUT: duration string, e.g., "15s" (default: 15s)
//   - CONTENT_FETCH_MAX_BODY_SIZE: integer in bytes (default: 10485760)
//   - CONTENT_FETCH_MAX_REDIRECTS: integer (default: 5)
//   - CONTENT_FETCH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
//   - CONTENT_FETCH_USER_AGENT: string (default: desktop Chrome)
func LoadConfigFromEnv(logger *slog.Logger) Config {
	cfg := DefaultConfig()

	warn := func(warnings []string) {
		for _, w := range warnings {
			logger.Warn("Configuration fallback applied", slog.String("component", "fetcher"), slog.String("warning", w))
		}
	}

	timeout := config.LoadEnvDuration("CONTENT_FETCH_TIMEOUT", cfg.Timeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Second, 2*time.Minute)
	})
	warn(timeout.Warnings)
	cfg.Timeout = timeout.Value

	bodySize := config.LoadEnvInt("CONTENT_FETCH_MAX_BODY_SIZE", int(cfg.MaxBodySize), func(v int) error {
		return config.ValidateIntRange(v, 1024, 100*1024*1024)
	})
	warn(bodySize.Warnings)
	cfg.MaxBodySize = int64(bodySize.Value)

	redirects := config.LoadEnvInt("CONTENT_FETCH_MAX_REDIRECTS", cfg.MaxRedirects, func(v int) error {
		return config.ValidateIntRange(v, 0, 10)
	})
	warn(redirects.Warnings)
	cfg.MaxRedirects = redirects.Value

	deny := config.LoadEnvBool("CONTENT_FETCH_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs)
	warn(deny.Warnings)
	cfg.DenyPrivateIPs = deny.Value

	cfg.UserAgent = config.LoadEnvString("CONTENT_FETCH_USER_AGENT", cfg.UserAgent)

	return cfg
}
