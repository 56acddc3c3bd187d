// Package summarizer provides LLM-backed one-sentence summarization for the digest.
// It includes adapters for Gemini (REST), Claude (Anthropic) and OpenAI. Calls
// run through a circuit breaker and are never retried.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"news-digest/internal/observability/logging"
	"news-digest/internal/utils/text"
)

// BuildPrompt asks for one Simplified Chinese sentence of at most limit characters
// with no preamble. The article text is fenced with "---" lines.
func BuildPrompt(body string, limit int) string {
	return fmt.Sprintf("请用简体中文，用一句话（不超过%d字）精准地总结以下新闻报道或论文摘要的核心内容，不需要任何多余的开头或结尾：\n\n---\n%s\n---",
		limit, body)
}

// CleanSummary trims whitespace and removes markdown emphasis markers.
func CleanSummary(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(s), "*", ""))
}

// observe logs and records metrics for a finished provider call.
func observe(ctx context.Context, recorder SummaryMetricsRecorder, provider, summary string, limit int, duration time.Duration) {
	length := text.CountRunes(summary)
	withinLimit := length <= limit

	logging.FromContext(ctx).Info("Summarization completed",
		slog.String("provider", provider),
		slog.Int("summary_length", length),
		slog.Int("character_limit", limit),
		slog.Bool("within_limit", withinLimit),
		slog.Duration("duration", duration))

	if !withinLimit {
		logging.FromContext(ctx).Warn("Summary exceeds character limit",
			slog.String("provider", provider),
			slog.Int("summary_length", length),
			slog.Int("limit", limit),
			slog.Int("excess", length-limit))
		recorder.RecordLimitExceeded()
	}

	recorder.RecordLength(length)
	recorder.RecordDuration(duration)
	recorder.RecordCompliance(withinLimit)
}
