package summarizer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	"news-digest/internal/pkg/config"
)

// Provider names accepted by SUMMARIZER_TYPE.
const (
	TypeGemini = "gemini"
	TypeClaude = "claude"
	TypeOpenAI = "openai"
	TypeNoOp   = "noop"
)

const (
	minCharLimit = 10
	maxCharLimit = 500

	// DefaultCharacterLimit is the summary length ceiling put into the prompt.
	DefaultCharacterLimit = 60

	// DefaultGeminiModel is the Gemini model used when GEMINI_MODEL is unset.
	DefaultGeminiModel = "gemini-1.5-flash-latest"

	// DefaultGeminiBaseURL is the Generative Language API endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
)

// ProviderConfig holds the per-provider model and endpoint.
// An empty BaseURL means the provider's public endpoint.
type ProviderConfig struct {
	Model   string
	BaseURL string
}

// Config holds the summarizer configuration.
type Config struct {
	// Type selects the provider (gemini, claude, openai, noop). Default: gemini
	Type string

	// CharacterLimit is the maximum summary length requested in the prompt.
	// Range: 10-500 characters. Default: 60
	CharacterLimit int

	// Timeout bounds a single API call. Default: 30s
	Timeout time.Duration

	// MaxTokens caps the response tokens for providers that require it.
	MaxTokens int

	Gemini ProviderConfig
	Claude ProviderConfig
	OpenAI ProviderConfig
}

// DefaultConfig returns the default summarizer configuration.
func DefaultConfig() Config {
	return Config{
		Type:           TypeGemini,
		CharacterLimit: DefaultCharacterLimit,
		Timeout:        30 * time.Second,
		MaxTokens:      256,
		Gemini:         ProviderConfig{Model: DefaultGeminiModel, BaseURL: DefaultGeminiBaseURL},
		Claude:         ProviderConfig{Model: string(anthropic.ModelClaudeSonnet4_5_20250929)},
		OpenAI:         ProviderConfig{Model: openai.GPT4oMini},
	}
}

// ValidateCharacterLimit checks the character limit range.
func ValidateCharacterLimit(limit int) error {
	if limit < minCharLimit {
		return fmt.Errorf("character limit %d is below minimum %d", limit, minCharLimit)
	}
	if limit > maxCharLimit {
		return fmt.Errorf("character limit %d exceeds maximum %d", limit, maxCharLimit)
	}
	return nil
}

// ValidateType checks the provider name.
func ValidateType(t string) error {
	switch t {
	case TypeGemini, TypeClaude, TypeOpenAI, TypeNoOp:
		return nil
	}
	return fmt.Errorf("unknown summarizer type %q (must be gemini, claude, openai or noop)", t)
}

// APIKeyEnv returns the environment variable holding the credential of a provider,
// or "" for providers that need none.
func APIKeyEnv(summarizerType string) string {
	switch summarizerType {
	case TypeGemini:
		return "GEMINI_API_KEY"
	case TypeClaude:
		return "ANTHROPIC_API_KEY"
	case TypeOpenAI:
		return "OPENAI_API_KEY"
	}
	return ""
}

// LoadConfigFromEnv loads the summarizer configuration with fail-open fallbacks.
//
// Environment variables:
//   - SUMMARIZER_TYPE: gemini, claude, openai or noop (default: gemini)
//   - SUMMARY_CHAR_LIMIT: integer 10-500 (default: 60)
//   - SUMMARIZER_TIMEOUT: duration 5s-5m (default: 30s)
//   - GEMINI_MODEL, GEMINI_BASE_URL
//   - CLAUDE_MODEL, ANTHROPIC_BASE_URL
//   - OPENAI_MODEL, OPENAI_BASE_URL
func LoadConfigFromEnv(logger *slog.Logger) Config {
	cfg := DefaultConfig()

	warn := func(warnings []string) {
		for _, w := range warnings {
			logger.Warn("Configuration fallback applied", slog.String("component", "summarizer"), slog.String("warning", w))
		}
	}

	typ := config.LoadEnvWithFallback("SUMMARIZER_TYPE", cfg.Type, ValidateType)
	warn(typ.Warnings)
	cfg.Type = typ.Value

	limit := config.LoadEnvInt("SUMMARY_CHAR_LIMIT", cfg.CharacterLimit, ValidateCharacterLimit)
	warn(limit.Warnings)
	cfg.CharacterLimit = limit.Value

	timeout := config.LoadEnvDuration("SUMMARIZER_TIMEOUT", cfg.Timeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 5*time.Second, 5*time.Minute)
	})
	warn(timeout.Warnings)
	cfg.Timeout = timeout.Value

	cfg.Gemini.Model = config.LoadEnvString("GEMINI_MODEL", cfg.Gemini.Model)
	cfg.Gemini.BaseURL = config.LoadEnvString("GEMINI_BASE_URL", cfg.Gemini.BaseURL)
	cfg.Claude.Model = config.LoadEnvString("CLAUDE_MODEL", cfg.Claude.Model)
	cfg.Claude.BaseURL = config.LoadEnvString("ANTHROPIC_BASE_URL", cfg.Claude.BaseURL)
	cfg.OpenAI.Model = config.LoadEnvString("OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.BaseURL = config.LoadEnvString("OPENAI_BASE_URL", cfg.OpenAI.BaseURL)

	return cfg
}
