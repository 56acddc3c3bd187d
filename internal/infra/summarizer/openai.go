package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"news-digest/internal/observability/logging"
	"news-digest/internal/resilience/circuitbreaker"
	"news-digest/internal/utils/text"
)

// OpenAI implements the Summarizer port using the Chat Completions API.
type OpenAI struct {
	client          *openai.Client
	model           string
	maxTokens       int
	limit           int
	timeout         time.Duration
	circuitBreaker  *circuitbreaker.CircuitBreaker
	metricsRecorder SummaryMetricsRecorder
}

// NewOpenAI creates a new OpenAI summarizer with the given API key.
func NewOpenAI(apiKey string, cfg Config) *OpenAI {
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAI.BaseURL
	}

	slog.Info("Initialized OpenAI summarizer with configuration",
		slog.Int("character_limit", cfg.CharacterLimit),
		slog.String("model", cfg.OpenAI.Model))

	return &OpenAI{
		client:          openai.NewClientWithConfig(clientConfig),
		model:           cfg.OpenAI.Model,
		maxTokens:       cfg.MaxTokens,
		limit:           cfg.CharacterLimit,
		timeout:         cfg.Timeout,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Summarize returns a one-sentence summary of input.
func (o *OpenAI) Summarize(ctx context.Context, input string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	summary, err := circuitbreaker.Do(o.circuitBreaker, func() (string, error) {
		return o.doSummarize(ctx, input)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			logging.FromContext(ctx).Warn("openai api circuit breaker open, request rejected",
				slog.String("service", o.circuitBreaker.Name()),
				slog.String("state", o.circuitBreaker.State().String()))
			return "", fmt.Errorf("openai api unavailable: circuit breaker open: %w", err)
		}
		return "", err
	}
	return summary, nil
}

// CircuitBreaker returns the breaker guarding the API.
func (o *OpenAI) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return o.circuitBreaker
}

func (o *OpenAI) doSummarize(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}

	logging.FromContext(ctx).Debug("Starting summarization",
		slog.String("provider", TypeOpenAI),
		slog.Int("input_length", text.CountRunes(input)),
		slog.Int("character_limit", o.limit))

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: BuildPrompt(input, o.limit),
		}},
	})
	duration := time.Since(start)

	if err != nil {
		logging.FromContext(ctx).Error("Summarization failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	summary := CleanSummary(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", ErrEmptyResponse
	}

	observe(ctx, o.metricsRecorder, TypeOpenAI, summary, o.limit, duration)
	return summary, nil
}
