package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SummaryMetricsRecorder defines the interface for recording summary quality metrics.
// This abstraction allows for easy testing and alternative metrics backends.
type SummaryMetricsRecorder interface {
	// RecordLength records the character count of a generated summary.
	RecordLength(length int)

	// RecordLimitExceeded increments the counter of summaries over the limit.
	RecordLimitExceeded()

	// RecordCompliance sets the compliance gauge from the latest summary.
	RecordCompliance(withinLimit bool)

	// RecordDuration records the duration of one API call.
	RecordDuration(duration time.Duration)
}

// PrometheusSummaryMetrics implements SummaryMetricsRecorder using Prometheus.
// It is a process-wide singleton because every provider shares the same series.
type PrometheusSummaryMetrics struct {
	lengthHistogram   prometheus.Histogram
	exceededCounter   prometheus.Counter
	complianceGauge   prometheus.Gauge
	durationHistogram prometheus.Histogram
}

var (
	prometheusMetricsInstance *PrometheusSummaryMetrics
	prometheusMetricsOnce     sync.Once
)

func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		return promauto.NewHistogram(opts)
	}
	return h
}

func getOrCreateCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter)
		}
		return promauto.NewCounter(opts)
	}
	return c
}

func getOrCreateGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	g := prometheus.NewGauge(opts)
	if err := prometheus.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Gauge)
		}
		return promauto.NewGauge(opts)
	}
	return g
}

// NewPrometheusSummaryMetrics returns the shared Prometheus recorder.
func NewPrometheusSummaryMetrics() *PrometheusSummaryMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusSummaryMetrics{
			lengthHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "digest_summary_length_characters",
				Help:    "Distribution of summary lengths in characters (Unicode runes)",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 80, 100, 150},
			}),
			exceededCounter: getOrCreateCounter(prometheus.CounterOpts{
				Name: "digest_summary_limit_exceeded_total",
				Help: "Total number of summaries exceeding the configured character limit",
			}),
			complianceGauge: getOrCreateGauge(prometheus.GaugeOpts{
				Name: "digest_summary_limit_compliance",
				Help: "1 if the latest summary was within the character limit, 0 otherwise",
			}),
			durationHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "digest_summary_api_duration_seconds",
				Help:    "Time taken by one summarization API call",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
			}),
		}
	})
	return prometheusMetricsInstance
}

// RecordLength records a summary length.
func (p *PrometheusSummaryMetrics) RecordLength(length int) {
	p.lengthHistogram.Observe(float64(length))
}

// RecordLimitExceeded increments the limit-exceeded counter.
func (p *PrometheusSummaryMetrics) RecordLimitExceeded() {
	p.exceededCounter.Inc()
}

// RecordCompliance sets the compliance gauge.
func (p *PrometheusSummaryMetrics) RecordCompliance(withinLimit bool) {
	if withinLimit {
		p.complianceGauge.Set(1.0)
	} else {
		p.complianceGauge.Set(0.0)
	}
}

// RecordDuration records an API call duration.
func (p *PrometheusSummaryMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}
