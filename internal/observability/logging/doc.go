// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for the patterns used by the digest worker: JSON or text output, a configurable
// level, and a per-run identifier attached to every record of a run.
//
// Example usage:
//
//	logger := logging.NewLogger()
//	ctx, logger = logging.WithRunID(ctx, logger, uuid.NewString())
//	logger.Info("run started")
package logging
