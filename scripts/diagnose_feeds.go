package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"news-digest/internal/config"
	"news-digest/internal/domain/entity"
	"news-digest/internal/infra/scraper"
)

// Diagnostic statuses.
const (
	statusOK           = "OK"
	statusRedirect     = "REDIRECT"
	statusStale        = "STALE"
	statusEmpty        = "EMPTY"
	statusHTTPError    = "HTTP_ERROR"
	statusTimeout      = "TIMEOUT"
	statusParseError   = "PARSE_ERROR"
	statusRequestError = "REQUEST_ERROR"
)

// FeedDiagnostic represents the diagnostic result for a single feed
type FeedDiagnostic struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Mode         string `json:"mode"`
	Status       string `json:"status"`
	HTTPCode     int    `json:"http_code"`
	FeedType     string `json:"feed_type"`
	ItemCount    int    `json:"item_count"`
	DatedCount   int    `json:"dated_count"`
	InWindow     int    `json:"in_window"`
	LatestDate   string `json:"latest_date,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

// Healthy reports whether the feed would contribute to a digest run.
func (d FeedDiagnostic) Healthy() bool {
	return d.Status == statusOK || d.Status == statusRedirect
}

func main() {
	sourcesFile := flag.String("sources", os.Getenv("SOURCES_FILE"), "YAML feed source table (default: built-in sources)")
	window := flag.Duration("window", 24*time.Hour, "recency window used to count qualifying entries")
	timeout := flag.Duration("timeout", 30*time.Second, "per-feed request timeout")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	sources, err := config.ResolveSources(*sourcesFile)
	if err != nil {
		log.Fatalf("Failed to load sources: %v", err)
	}

	log.Printf("Diagnosing %d feed sources...\n", len(sources))

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	now := time.Now().UTC()
	diagnostics := make([]FeedDiagnostic, 0, len(sources))
	for i, source := range sources {
		log.Printf("[%d/%d] Diagnosing: %s", i+1, len(sources), source.Name)
		diagnostics = append(diagnostics, diagnoseFeed(client, source, *timeout, *window, now))

		// Rate limiting to be nice to servers
		time.Sleep(500 * time.Millisecond)
	}

	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(diagnostics); err != nil {
			log.Fatalf("Failed to write JSON report: %v", err)
		}
		return
	}
	if err := writeReport(os.Stdout, diagnostics, now); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
}

func diagnoseFeed(client *http.Client, source entity.Source, timeout, window time.Duration, now time.Time) FeedDiagnostic {
	diag := FeedDiagnostic{
		Name: source.Name,
		URL:  source.FeedURL,
		Mode: string(source.Mode),
	}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.FeedURL, nil)
	if err != nil {
		diag.Status = statusRequestError
		diag.ErrorMessage = err.Error()
		return diag
	}
	req.Header.Set("User-Agent", scraper.DefaultUserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := client.Do(req)
	diag.ResponseTime = time.Since(startTime).Milliseconds()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = statusTimeout
			diag.ErrorMessage = fmt.Sprintf("Request timeout after %v", timeout)
		} else {
			diag.Status = statusHTTPError
			diag.ErrorMessage = err.Error()
		}
		return diag
	}
	defer func() { _ = resp.Body.Close() }()

	diag.HTTPCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		diag.Status = statusHTTPError
		diag.ErrorMessage = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)
		return diag
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		diag.Status = statusHTTPError
		diag.ErrorMessage = err.Error()
		return diag
	}

	feed, err := scraper.NewFeedParser().ParseString(string(body))
	if err != nil {
		diag.Status = statusParseError
		diag.ErrorMessage = fmt.Sprintf("%v. Content preview: %s", err, preview(body))
		return diag
	}
	summarizeFeed(&diag, feed, now.Add(-window))

	if resp.Request.URL.String() != source.FeedURL && diag.Status == statusOK {
		diag.RedirectURL = resp.Request.URL.String()
		diag.Status = statusRedirect
	}
	return diag
}

// summarizeFeed fills in counts and a status from a parsed feed.
func summarizeFeed(diag *FeedDiagnostic, feed *gofeed.Feed, cutoff time.Time) {
	diag.FeedType = strings.ToUpper(feed.FeedType)
	diag.ItemCount = len(feed.Items)

	var latest time.Time
	for _, it := range feed.Items {
		if it.PublishedParsed == nil {
			continue
		}
		published := it.PublishedParsed.UTC()
		diag.DatedCount++
		if published.After(cutoff) {
			diag.InWindow++
		}
		if published.After(latest) {
			latest = published
		}
	}
	if !latest.IsZero() {
		diag.LatestDate = latest.Format(time.RFC3339)
	}

	switch {
	case diag.ItemCount == 0:
		diag.Status = statusEmpty
		diag.ErrorMessage = "Feed has no items"
	case diag.InWindow == 0:
		diag.Status = statusStale
		diag.ErrorMessage = "No dated entries inside the recency window"
	default:
		diag.Status = statusOK
	}
}

func preview(body []byte) string {
	p := string(body)
	if len(p) > 200 {
		p = p[:200] + "..."
	}
	return p
}

func writeReport(w io.Writer, diagnostics []FeedDiagnostic, generated time.Time) error {
	var b strings.Builder

	fmt.Fprintf(&b, "===============================================\n")
	fmt.Fprintf(&b, "Feed Diagnostic Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format(time.RFC3339))
	fmt.Fprintf(&b, "Total Sources: %d\n", len(diagnostics))
	fmt.Fprintf(&b, "===============================================\n\n")

	var working, broken []FeedDiagnostic
	for _, d := range diagnostics {
		if d.Healthy() {
			working = append(working, d)
		} else {
			broken = append(broken, d)
		}
	}

	fmt.Fprintf(&b, "✅ WORKING FEEDS (%d):\n", len(working))
	fmt.Fprintf(&b, "-------------------------------------------\n")
	for _, d := range working {
		fmt.Fprintf(&b, "Name: %s [%s]\n", d.Name, d.Mode)
		fmt.Fprintf(&b, "  URL: %s\n", d.URL)
		fmt.Fprintf(&b, "  Type: %s | Items: %d | Dated: %d | In window: %d | Latest: %s\n",
			d.FeedType, d.ItemCount, d.DatedCount, d.InWindow, d.LatestDate)
		fmt.Fprintf(&b, "  Response: %dms | HTTP: %d\n", d.ResponseTime, d.HTTPCode)
		if d.RedirectURL != "" {
			fmt.Fprintf(&b, "  ⚠️  Redirected to: %s\n", d.RedirectURL)
		}
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, "\n❌ BROKEN FEEDS (%d):\n", len(broken))
	fmt.Fprintf(&b, "-------------------------------------------\n")
	for _, d := range broken {
		fmt.Fprintf(&b, "Name: %s [%s]\n", d.Name, d.Mode)
		fmt.Fprintf(&b, "  URL: %s\n", d.URL)
		fmt.Fprintf(&b, "  Status: %s | HTTP: %d\n", d.Status, d.HTTPCode)
		fmt.Fprintf(&b, "  Error: %s\n", d.ErrorMessage)
		fmt.Fprintf(&b, "  Response: %dms\n\n", d.ResponseTime)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
