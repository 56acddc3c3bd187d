// Package resilience provides fault isolation for the outbound calls of a digest run.
//
// The package supports:
//   - Circuit breakers for the headless renderer and the LLM APIs (circuitbreaker)
//   - A context-aware pacing limiter for per-article work (ratelimit)
//
// Failed calls are never retried; a breaker only turns a run of failures into
// fast failures so one broken dependency cannot stall every remaining article.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.RenderConfig())
//	html, err := circuitbreaker.Do(cb, func() (string, error) {
//	    return render(ctx, url)
//	})
//
//	limiter := ratelimit.New(time.Second)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
package resilience
