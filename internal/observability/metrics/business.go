package metrics

import "time"

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordFeedFetch records one feed fetch attempt and its duration.
func RecordFeedFetch(source string, success bool, duration time.Duration) {
	FeedFetchTotal.WithLabelValues(source, result(success)).Inc()
	FeedFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordArticlesAggregated records how many articles a source contributed to a run.
func RecordArticlesAggregated(source string, count int) {
	if count > 0 {
		ArticlesAggregatedTotal.WithLabelValues(source).Add(float64(count))
	}
}

// RecordEntryRejected records a feed entry that did not qualify.
func RecordEntryRejected(reason string) {
	EntriesRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordExtractionAttempt records the outcome of one extraction tier.
func RecordExtractionAttempt(tier string, success bool, duration time.Duration) {
	ExtractionAttemptsTotal.WithLabelValues(tier, result(success)).Inc()
	ExtractionDuration.WithLabelValues(tier).Observe(duration.Seconds())
}

// RecordExtractedLength records the final length of extracted text.
func RecordExtractedLength(length int) {
	ExtractedLength.Observe(float64(length))
}

// RecordSummarization records a summarization outcome: "success", "failure" or "skipped".
// Duration is ignored for skipped summaries since no call was made.
func RecordSummarization(outcome string, duration time.Duration) {
	SummarizationsTotal.WithLabelValues(outcome).Inc()
	if outcome != "skipped" {
		SummarizationDuration.Observe(duration.Seconds())
	}
}

// RecordDelivery records a digest delivery attempt for a channel.
func RecordDelivery(channel string, success bool) {
	DeliveriesTotal.WithLabelValues(channel, result(success)).Inc()
}

// RecordRunArticles sets the article count of the most recent run.
func RecordRunArticles(count int) {
	RunArticles.Set(float64(count))
}
