package summarizer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClaude(t *testing.T, handler http.HandlerFunc) *Claude {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Claude.BaseURL = srv.URL
	return NewClaude("test-key", cfg)
}

func TestClaude_Summarize_Success(t *testing.T) {
	var req struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	var gotPath, gotKey string

	c := newTestClaude(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5-20250929",
			"content": [{"type": "text", "text": "*研究人员* 提出新方法。"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`)
	})

	summary, err := c.Summarize(context.Background(), "Researchers propose a new method.")
	require.NoError(t, err)

	assert.Equal(t, "研究人员 提出新方法。", summary)
	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, 256, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
}

func TestClaude_Summarize_NoRetryOnServerError(t *testing.T) {
	calls := 0
	c := newTestClaude(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`)
	})

	_, err := c.Summarize(context.Background(), "body")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "request must be attempted exactly once")
}

func TestClaude_Summarize_EmptyContent(t *testing.T) {
	c := newTestClaude(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_02","type":"message","role":"assistant","model":"m","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`)
	})

	_, err := c.Summarize(context.Background(), "body")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
