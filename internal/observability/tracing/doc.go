// Package tracing provides the shared OpenTelemetry tracer of the digest worker.
//
// Spans are created around each run stage (aggregate, extract, summarize,
// deliver). No exporter is installed here; the global TracerProvider decides
// where spans go, and tests install an in-memory recorder.
package tracing
