// Package circuitbreaker provides circuit breaker implementations for external service calls.
// It uses the github.com/sony/gobreaker library to prevent cascading failures.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name is the circuit breaker name for logging and metrics
	Name string

	// MaxRequests is the maximum number of requests allowed in half-open state
	MaxRequests uint32

	// Interval is the cyclic period of the closed state to clear success/failure counts
	Interval time.Duration

	// Timeout is how long to wait in open state before trying again
	Timeout time.Duration

	// FailureThreshold is the failure ratio threshold to trip the circuit
	// For example, 0.6 means 60% failure rate
	FailureThreshold float64

	// MinRequests is the minimum number of requests before calculating failure ratio
	MinRequests uint32

	// ConsecutiveFailures trips the circuit after this many failures in a row,
	// regardless of the ratio. Zero disables the rule.
	ConsecutiveFailures uint32
}

// DefaultConfig returns a default configuration for circuit breakers.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// RenderConfig returns configuration for the headless browser renderer.
// Three launch/navigation failures in a row usually mean a missing or broken
// Chromium, so the circuit stays open for the rest of a typical run.
func RenderConfig() Config {
	return Config{
		Name:                "headless-render",
		MaxRequests:         1,
		Interval:            0, // never clear counts while closed
		Timeout:             10 * time.Minute,
		FailureThreshold:    0.8,
		MinRequests:         10,
		ConsecutiveFailures: 3,
	}
}

// GeminiAPIConfig returns configuration for Gemini API calls.
func GeminiAPIConfig() Config {
	cfg := DefaultConfig("gemini-api")
	cfg.ConsecutiveFailures = 5
	return cfg
}

// ClaudeAPIConfig returns configuration for Claude API calls.
func ClaudeAPIConfig() Config {
	cfg := DefaultConfig("claude-api")
	cfg.ConsecutiveFailures = 5
	return cfg
}

// OpenAIAPIConfig returns configuration for OpenAI API calls.
func OpenAIAPIConfig() Config {
	cfg := DefaultConfig("openai-api")
	cfg.ConsecutiveFailures = 5
	return cfg
}

// CircuitBreaker wraps gobreaker.CircuitBreaker with additional functionality.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a new circuit breaker with the given configuration.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				return true
			}
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs the given function through the circuit breaker.
// If the circuit is open, it returns gobreaker.ErrOpenState immediately.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// Do runs fn through cb and returns its typed result.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	result, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := result.(T)
	return v, nil
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the name of the circuit breaker.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen returns true if the circuit breaker is in the open state.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
