package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed aggregation metrics
var (
	// FeedFetchTotal counts feed fetch attempts by source and result (success, failure)
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_feed_fetch_total",
			Help: "Total number of feed fetch attempts by source and result",
		},
		[]string{"source", "result"},
	)

	// FeedFetchDuration measures feed fetch+parse duration per source
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "digest_feed_fetch_duration_seconds",
			Help:    "Duration of feed fetch and parse in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source"},
	)

	// ArticlesAggregatedTotal counts articles accepted into a run per source
	ArticlesAggregatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_articles_aggregated_total",
			Help: "Total number of articles accepted by the aggregator per source",
		},
		[]string{"source"},
	)

	// EntriesRejectedTotal counts feed entries rejected by reason (no_date, stale, duplicate, no_link)
	EntriesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_entries_rejected_total",
			Help: "Total number of feed entries rejected by the aggregator by reason",
		},
		[]string{"reason"},
	)
)

// Content extraction metrics
var (
	// ExtractionAttemptsTotal counts extraction tier attempts by tier and result
	ExtractionAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_extraction_attempts_total",
			Help: "Total number of extraction tier attempts by tier and result",
		},
		[]string{"tier", "result"},
	)

	// ExtractionDuration measures time spent per extraction tier
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "digest_extraction_duration_seconds",
			Help:    "Duration of an extraction tier attempt in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"tier"},
	)

	// ExtractedLength observes the length of successfully extracted text (runes, after truncation)
	ExtractedLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_extracted_length_characters",
			Help:    "Length of extracted article text in characters",
			Buckets: []float64{100, 250, 500, 1000, 2000, 2500, 3000},
		},
	)
)

// Summarization and delivery metrics
var (
	// SummarizationsTotal counts summarization outcomes (success, failure, skipped)
	SummarizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_summarizations_total",
			Help: "Total number of summarization outcomes",
		},
		[]string{"result"},
	)

	// SummarizationDuration measures summarization call duration
	SummarizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_summarization_duration_seconds",
			Help:    "Duration of summarization calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
		},
	)

	// DeliveriesTotal counts digest deliveries by channel and result
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_deliveries_total",
			Help: "Total number of digest deliveries by channel and result",
		},
		[]string{"channel", "result"},
	)

	// RunArticles records the number of articles processed by the most recent run
	RunArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "digest_run_articles",
			Help: "Number of articles processed by the most recent run",
		},
	)
)
