// Package observability groups the structured logging, Prometheus metrics and
// OpenTelemetry tracing used by the digest worker.
//
// Subpackages:
//   - logging: slog logger construction and context propagation
//   - metrics: Prometheus business metrics for feeds, extraction, summaries and delivery
//   - tracing: the shared OpenTelemetry tracer
package observability
