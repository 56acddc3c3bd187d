package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"news-digest/internal/resilience/circuitbreaker"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// BreakerHealthResponse represents the state of all circuit breakers.
type BreakerHealthResponse struct {
	Healthy  bool            `json:"healthy"`
	Breakers []BreakerStatus `json:"breakers"`
}

// BreakerStatus represents the state of a single circuit breaker.
type BreakerStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Open  bool   `json:"open"`
}

// newMetricsMux builds the metrics server routes:
//   - GET /metrics - Prometheus metrics endpoint
//   - GET /health - Simple liveness probe (always returns 200 OK)
//   - GET /health/breakers - Circuit breaker states of the renderer and summarizer
func newMetricsMux(breakers []*circuitbreaker.CircuitBreaker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/health/breakers", breakerHealthHandler(breakers))
	return mux
}

// startMetricsServer starts the Prometheus metrics HTTP server on port.
// When ctx is canceled, the server gracefully shuts down within 5 seconds.
func startMetricsServer(ctx context.Context, logger *slog.Logger, port int, breakers []*circuitbreaker.CircuitBreaker) *http.Server {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      newMetricsMux(breakers),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in background goroutine
	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

// healthHandler handles GET /health requests (liveness probe).
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}

// breakerHealthHandler returns 200 OK while every breaker is closed or half-open,
// and 503 Service Unavailable once any breaker is open.
func breakerHealthHandler(breakers []*circuitbreaker.CircuitBreaker) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		statuses := make([]BreakerStatus, 0, len(breakers))
		healthy := true

		for _, cb := range breakers {
			open := cb.IsOpen()
			statuses = append(statuses, BreakerStatus{
				Name:  cb.Name(),
				State: cb.State().String(),
				Open:  open,
			})
			if open {
				healthy = false
			}
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(BreakerHealthResponse{
			Healthy:  healthy,
			Breakers: statuses,
		})
	}
}
