package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"news-digest/internal/utils/text"
)

// maxErrorBody bounds how much of a rejected response is kept.
const maxErrorBody = 1024

// postJSON marshals payload and POSTs it to url. Any HTTP status is returned to
// the caller together with the (bounded) response body.
func postJSON(ctx context.Context, client *http.Client, url string, payload any) (int, []byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return 0, nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// truncate cuts s to max characters, ending with suffix when cut.
func truncate(s string, max int, suffix string) string {
	if text.CountRunes(s) <= max {
		return s
	}
	keep := max - text.CountRunes(suffix)
	if keep <= 0 {
		return text.Truncate(suffix, max)
	}
	return text.Truncate(s, keep) + suffix
}

func errorBody(body []byte) string {
	return text.Truncate(string(body), maxErrorBody)
}

// headerText renders "🔔 {title} ({date})".
func headerText(title, date string) string {
	return fmt.Sprintf("🔔 %s (%s)", title, date)
}
