// Package metrics provides the Prometheus business metrics of the digest pipeline.
//
// All metrics are registered with the Prometheus default registry through promauto
// and exposed via the /metrics endpoint of the resident worker.
//
// Example usage:
//
//	start := time.Now()
//	items, err := fetcher.Fetch(ctx, src.FeedURL)
//	metrics.RecordFeedFetch(src.Name, err == nil, time.Since(start))
package metrics
