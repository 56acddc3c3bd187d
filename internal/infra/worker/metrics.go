package worker

import (
	"github.com/prometheus/client_golang/prometheus"

	"news-digest/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for the digest worker.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// run metrics.
//
// Worker-specific metrics:
//   - digest_worker_runs_total{status}: runs by status (success, empty, failure)
//   - digest_worker_run_duration_seconds: run duration histogram
//   - digest_worker_articles_processed_total: articles processed across runs
//   - digest_worker_last_success_timestamp: Unix timestamp of the last successful run
//
// Example usage:
//
//	metrics := NewWorkerMetrics()
//	metrics.MustRegister(prometheus.DefaultRegisterer)
type WorkerMetrics struct {
	*config.ConfigMetrics

	RunsTotal              *prometheus.CounterVec
	RunDurationSeconds     prometheus.Histogram
	ArticlesProcessedTotal prometheus.Counter
	LastSuccessTimestamp   prometheus.Gauge
}

// NewWorkerMetrics creates unregistered worker metrics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("digest_worker"),

		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "digest_worker_runs_total",
			Help: "Total number of digest runs by status (success/empty/failure)",
		}, []string{"status"}),

		RunDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "digest_worker_run_duration_seconds",
			Help:    "Duration of digest runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800}, // 1s, 5s, 30s, 1m, 5m, 15m, 30m
		}),

		ArticlesProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "digest_worker_articles_processed_total",
			Help: "Total number of articles processed across all runs",
		}),

		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "digest_worker_last_success_timestamp",
			Help: "Unix timestamp of the last successful digest run",
		}),
	}
}

// MustRegister registers all worker metrics with reg.
// Registering the same collectors twice is tolerated.
func (m *WorkerMetrics) MustRegister(reg prometheus.Registerer) {
	m.ConfigMetrics.Register(reg)
	for _, c := range []prometheus.Collector{m.RunsTotal, m.RunDurationSeconds, m.ArticlesProcessedTotal, m.LastSuccessTimestamp} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}

// RecordRun increments the run counter for status and observes the duration.
func (m *WorkerMetrics) RecordRun(status string, seconds float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDurationSeconds.Observe(seconds)
}

// RecordArticlesProcessed adds count to the processed-articles counter.
func (m *WorkerMetrics) RecordArticlesProcessed(count int) {
	m.ArticlesProcessedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
