package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "news-digest"

// GetTracer returns the tracer for creating spans.
// It is resolved from the global provider on every call so a provider installed
// after package initialization (for example in tests) is honoured.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "digest.extract")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
