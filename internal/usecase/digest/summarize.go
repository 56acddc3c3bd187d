package digest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"news-digest/internal/observability/logging"
	"news-digest/internal/observability/metrics"
)

// Sentinel summaries. They stand in for a real summary in the digest.
const (
	SkippedSentinel = "无法获取正文，跳过总结。"
	FailedSentinel  = "AI总结失败。"
)

// Outcome classifies one summarization.
type Outcome string

const (
	OutcomeSummarized Outcome = "success"
	OutcomeFailed     Outcome = "failure"
	OutcomeSkipped    Outcome = "skipped"
)

// Summarize applies the sentinel policy around s. Blank text is skipped without
// calling s; a provider error or an empty answer yields FailedSentinel.
func Summarize(ctx context.Context, s Summarizer, text string) string {
	summary, _ := summarize(ctx, s, text)
	return summary
}

func summarize(ctx context.Context, s Summarizer, text string) (string, Outcome) {
	if strings.TrimSpace(text) == "" {
		metrics.RecordSummarization(string(OutcomeSkipped), 0)
		return SkippedSentinel, OutcomeSkipped
	}

	start := time.Now()
	summary, err := s.Summarize(ctx, text)
	duration := time.Since(start)

	if err != nil {
		logging.FromContext(ctx).Warn("summarization failed",
			slog.Duration("duration", duration),
			slog.Any("error", err))
		metrics.RecordSummarization(string(OutcomeFailed), duration)
		return FailedSentinel, OutcomeFailed
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		logging.FromContext(ctx).Warn("summarization returned empty text",
			slog.Duration("duration", duration))
		metrics.RecordSummarization(string(OutcomeFailed), duration)
		return FailedSentinel, OutcomeFailed
	}

	metrics.RecordSummarization(string(OutcomeSummarized), duration)
	return summary, OutcomeSummarized
}
