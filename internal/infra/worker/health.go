package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HealthServer provides HTTP endpoints for health checks of the resident worker.
//
// Endpoints:
//   - /health: Liveness probe (always returns 200 OK)
//   - /health/ready: Readiness probe (200 once the scheduler is running, 503 before)
//   - /health/last-run: JSON summary of the most recent digest run
//
// Example usage:
//
//	healthServer := NewHealthServer(":9091", logger)
//	go func() {
//	    if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
//	        logger.Error("health server failed", slog.Any("error", err))
//	    }
//	}()
//	healthServer.SetReady(true)
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	isReady *atomic.Bool
	server  *http.Server

	mu      sync.RWMutex
	lastRun *RunReport
}

// RunReport is the outcome of one run as exposed on /health/last-run.
type RunReport struct {
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Articles   int       `json:"articles"`
	Delivered  bool      `json:"delivered"`
	Error      string    `json:"error,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// NewHealthServer creates a health server listening on addr. It starts not ready.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	return &HealthServer{
		addr:    addr,
		logger:  logger,
		isReady: &atomic.Bool{},
	}
}

// Handler returns the HTTP handler serving the health endpoints.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	mux.HandleFunc("/health/last-run", h.handleLastRun)
	return mux
}

// Start serves until ctx is cancelled, then shuts down with a 5-second grace period.
// It returns http.ErrServerClosed after a graceful shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		return http.ErrServerClosed

	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady sets the readiness state reported by /health/ready.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

// RecordRun stores the report served by /health/last-run.
func (h *HealthServer) RecordRun(report RunReport) {
	h.mu.Lock()
	h.lastRun = &report
	h.mu.Unlock()
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if h.isReady.Load() {
		h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	h.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
}

func (h *HealthServer) handleLastRun(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	report := h.lastRun
	h.mu.RUnlock()

	if report == nil {
		h.writeJSON(w, http.StatusNotFound, healthResponse{Status: "no runs yet"})
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *HealthServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
