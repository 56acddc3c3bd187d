package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"news-digest/internal/observability/logging"
	"news-digest/internal/resilience/circuitbreaker"
	"news-digest/internal/utils/text"
)

// Claude implements the Summarizer port using Anthropic's Messages API.
// SDK-level retries are disabled.
type Claude struct {
	client          anthropic.Client
	model           string
	maxTokens       int
	limit           int
	timeout         time.Duration
	circuitBreaker  *circuitbreaker.CircuitBreaker
	metricsRecorder SummaryMetricsRecorder
}

// NewClaude creates a new Claude summarizer with the given API key.
func NewClaude(apiKey string, cfg Config) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.Claude.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.Claude.BaseURL))
	}

	slog.Info("Initialized Claude summarizer with configuration",
		slog.Int("character_limit", cfg.CharacterLimit),
		slog.String("model", cfg.Claude.Model))

	return &Claude{
		client:          anthropic.NewClient(opts...),
		model:           cfg.Claude.Model,
		maxTokens:       cfg.MaxTokens,
		limit:           cfg.CharacterLimit,
		timeout:         cfg.Timeout,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Summarize returns a one-sentence summary of input.
func (c *Claude) Summarize(ctx context.Context, input string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	summary, err := circuitbreaker.Do(c.circuitBreaker, func() (string, error) {
		return c.doSummarize(ctx, input)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			logging.FromContext(ctx).Warn("claude api circuit breaker open, request rejected",
				slog.String("service", c.circuitBreaker.Name()),
				slog.String("state", c.circuitBreaker.State().String()))
			return "", fmt.Errorf("claude api unavailable: circuit breaker open: %w", err)
		}
		return "", err
	}
	return summary, nil
}

// CircuitBreaker returns the breaker guarding the API.
func (c *Claude) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return c.circuitBreaker
}

func (c *Claude) doSummarize(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}

	requestID := uuid.New().String()
	logger := logging.FromContext(ctx).With(slog.String("request_id", requestID))

	logger.Debug("Starting summarization",
		slog.String("provider", TypeClaude),
		slog.Int("input_length", text.CountRunes(input)),
		slog.Int("character_limit", c.limit))

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(BuildPrompt(input, c.limit)),
			),
		},
	})
	duration := time.Since(start)

	if err != nil {
		logger.Error("Summarization failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", ErrEmptyResponse
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("%w: unexpected content block type %q", ErrMalformedResponse, message.Content[0].Type)
	}

	summary := CleanSummary(textBlock.Text)
	if summary == "" {
		return "", ErrEmptyResponse
	}

	observe(logging.WithLogger(ctx, logger), c.metricsRecorder, TypeClaude, summary, c.limit, duration)
	return summary, nil
}
