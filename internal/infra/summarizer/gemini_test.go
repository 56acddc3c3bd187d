package summarizer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *Gemini {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Gemini.BaseURL = srv.URL
	return NewGemini("test-key", cfg)
}

/* ───────── 正常系 ───────── */

func TestGemini_Summarize_Success(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		gotPrompt = gjson.GetBytes(body, "contents.0.parts.0.text").String()

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"  **新模型** 发布。\n"}]}}]}`)
	})

	summary, err := g.Summarize(context.Background(), "OpenAI released a new model.")
	require.NoError(t, err)

	assert.Equal(t, "新模型 发布。", summary)
	assert.Equal(t, "/v1/models/"+DefaultGeminiModel+":generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotPrompt, "不超过60字")
	assert.Contains(t, gotPrompt, "---\nOpenAI released a new model.\n---")
}

/* ───────── 異常系 ───────── */

func TestGemini_Summarize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"non-200 status", http.StatusTooManyRequests, `{"error":{"message":"quota"}}`, ErrAPIStatus},
		{"missing candidates", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, ErrMalformedResponse},
		{"empty text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":" ** "}]}}]}`, ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGemini(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := g.Summarize(context.Background(), "body")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGemini_Summarize_EmptyInput(t *testing.T) {
	called := false
	g := newTestGemini(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
	})

	_, err := g.Summarize(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.False(t, called, "empty input must not reach the API")
}

func TestGemini_Summarize_CircuitOpens(t *testing.T) {
	calls := 0
	g := newTestGemini(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 5; i++ {
		_, err := g.Summarize(context.Background(), "body")
		require.ErrorIs(t, err, ErrAPIStatus)
	}

	_, err := g.Summarize(context.Background(), "body")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, calls)
}

func TestGemini_Summarize_ErrorDoesNotLeakKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gemini.BaseURL = "http://127.0.0.1:1"
	g := NewGemini("secret-key", cfg)

	_, err := g.Summarize(context.Background(), "body")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")
}
