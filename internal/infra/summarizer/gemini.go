package summarizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"news-digest/internal/observability/logging"
	"news-digest/internal/resilience/circuitbreaker"
	"news-digest/internal/utils/text"
)

// maxErrorBody bounds how much of an error response is kept for logs.
const maxErrorBody = 512

// Gemini implements the Summarizer port with the Generative Language REST API.
//
// Request:  POST {base}/v1/models/{model}:generateContent?key={apiKey}
// Response: the summary is read from candidates.0.content.parts.0.text.
type Gemini struct {
	client          *http.Client
	apiKey          string
	model           string
	baseURL         string
	limit           int
	circuitBreaker  *circuitbreaker.CircuitBreaker
	metricsRecorder SummaryMetricsRecorder
}

// NewGemini creates a Gemini summarizer.
func NewGemini(apiKey string, cfg Config) *Gemini {
	base := strings.TrimRight(cfg.Gemini.BaseURL, "/")
	if base == "" {
		base = DefaultGeminiBaseURL
	}
	model := cfg.Gemini.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	slog.Info("Initialized Gemini summarizer with configuration",
		slog.Int("character_limit", cfg.CharacterLimit),
		slog.String("model", model))

	return &Gemini{
		client:          &http.Client{Timeout: cfg.Timeout},
		apiKey:          apiKey,
		model:           model,
		baseURL:         base,
		limit:           cfg.CharacterLimit,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.GeminiAPIConfig()),
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Summarize returns a one-sentence summary of input.
func (g *Gemini) Summarize(ctx context.Context, input string) (string, error) {
	summary, err := circuitbreaker.Do(g.circuitBreaker, func() (string, error) {
		return g.doSummarize(ctx, input)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			logging.FromContext(ctx).Warn("gemini api circuit breaker open, request rejected",
				slog.String("service", g.circuitBreaker.Name()),
				slog.String("state", g.circuitBreaker.State().String()))
			return "", fmt.Errorf("gemini api unavailable: circuit breaker open: %w", err)
		}
		return "", err
	}
	return summary, nil
}

func (g *Gemini) endpoint() string {
	q := url.Values{}
	q.Set("key", g.apiKey)
	return fmt.Sprintf("%s/v1/models/%s:generateContent?%s", g.baseURL, url.PathEscape(g.model), q.Encode())
}

// CircuitBreaker returns the breaker guarding the API.
func (g *Gemini) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return g.circuitBreaker
}

func (g *Gemini) doSummarize(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}

	body, err := sjson.SetBytes([]byte(`{}`), "contents.0.parts.0.text", BuildPrompt(input, g.limit))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}

	logging.FromContext(ctx).Debug("Starting summarization",
		slog.String("provider", TypeGemini),
		slog.Int("input_length", text.CountRunes(input)),
		slog.Int("character_limit", g.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		// url.Error would echo the request URL including the key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return "", fmt.Errorf("gemini api request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	duration := time.Since(start)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d: %s", ErrAPIStatus, resp.StatusCode, text.Truncate(string(respBody), maxErrorBody))
	}

	result := gjson.GetBytes(respBody, "candidates.0.content.parts.0.text")
	if !result.Exists() {
		return "", fmt.Errorf("%w: candidates.0.content.parts.0.text missing: %s", ErrMalformedResponse, text.Truncate(string(respBody), maxErrorBody))
	}

	summary := CleanSummary(result.String())
	if summary == "" {
		return "", ErrEmptyResponse
	}

	observe(ctx, g.metricsRecorder, TypeGemini, summary, g.limit, duration)
	return summary, nil
}
