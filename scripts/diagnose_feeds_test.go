package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-digest/internal/domain/entity"
)

var diagNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func rssWith(dates ...time.Time) string {
	var items strings.Builder
	for i, d := range dates {
		fmt.Fprintf(&items, "<item><title>t%d</title><link>https://x/%d</link><pubDate>%s</pubDate></item>", i, i, d.Format(time.RFC1123Z))
	}
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title>` + items.String() + `</channel></rss>`
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDiagnoseFeed(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus string
		wantWindow int
	}{
		{"fresh feed", http.StatusOK, rssWith(diagNow.Add(-time.Hour), diagNow.Add(-48*time.Hour)), statusOK, 1},
		{"stale feed", http.StatusOK, rssWith(diagNow.Add(-72 * time.Hour)), statusStale, 0},
		{"empty feed", http.StatusOK, rssWith(), statusEmpty, 0},
		{"not a feed", http.StatusOK, "<html>hello</html>", statusParseError, 0},
		{"server error", http.StatusBadGateway, "", statusHTTPError, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			src := entity.Source{Name: "x", FeedURL: srv.URL, Mode: entity.ModeFetch}

			d := diagnoseFeed(srv.Client(), src, 5*time.Second, 24*time.Hour, diagNow)

			assert.Equal(t, tt.wantStatus, d.Status, d.ErrorMessage)
			assert.Equal(t, tt.wantWindow, d.InWindow)
		})
	}
}

func TestWriteReport(t *testing.T) {
	var b strings.Builder
	err := writeReport(&b, []FeedDiagnostic{
		{Name: "ok", Status: statusOK, Mode: "fetch"},
		{Name: "bad", Status: statusTimeout, Mode: "fetch", ErrorMessage: "Request timeout after 30s"},
	}, diagNow)
	require.NoError(t, err)

	out := b.String()
	assert.Contains(t, out, "WORKING FEEDS (1)")
	assert.Contains(t, out, "BROKEN FEEDS (1)")
	assert.Contains(t, out, "Request timeout after 30s")
}
