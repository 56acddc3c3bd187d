// Package ratelimit paces outbound work with a token bucket from golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter admits one operation per interval with a burst of one.
// The first Wait returns immediately. Limiter is safe for concurrent use.
type Limiter struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// New creates a Limiter admitting one operation per interval.
// A non-positive interval disables pacing.
func New(interval time.Duration) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Wait blocks until the next operation is admitted or ctx is done.
// It returns ctx's error when the context ends first.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Interval returns the configured spacing between operations.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
