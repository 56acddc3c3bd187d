package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHealthServer() *HealthServer {
	return NewHealthServer("localhost:0", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func getJSON(t *testing.T, h http.Handler, path string, v any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
	return rec.Code
}

func TestHealthServer_Liveness(t *testing.T) {
	server := newTestHealthServer()

	var resp healthResponse
	code := getJSON(t, server.Handler(), "/health", &resp)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthServer_Readiness_Transition(t *testing.T) {
	server := newTestHealthServer()
	handler := server.Handler()

	var resp healthResponse
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, handler, "/health/ready", &resp))
	assert.Equal(t, "not ready", resp.Status)

	server.SetReady(true)
	assert.Equal(t, http.StatusOK, getJSON(t, handler, "/health/ready", &resp))
	assert.Equal(t, "ok", resp.Status)

	server.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, handler, "/health/ready", &resp))
}

func TestHealthServer_LastRun(t *testing.T) {
	server := newTestHealthServer()
	handler := server.Handler()

	var empty healthResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, handler, "/health/last-run", &empty))

	started := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	server.RecordRun(RunReport{
		RunID:      "run-1",
		Status:     "success",
		StartedAt:  started,
		DurationMS: 1500,
		Articles:   12,
		Delivered:  true,
	})

	var report RunReport
	require.Equal(t, http.StatusOK, getJSON(t, handler, "/health/last-run", &report))
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, 12, report.Articles)
	assert.True(t, report.Delivered)
	assert.True(t, started.Equal(report.StartedAt))
	assert.Empty(t, report.Error)
}

func TestHealthServer_GracefulShutdown(t *testing.T) {
	server := NewHealthServer("localhost:19095", slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	// Wait for server to start
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://localhost:19095/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-errChan:
		assert.True(t, errors.Is(err, http.ErrServerClosed), "expected http.ErrServerClosed, got %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("shutdown timeout")
	}
}
