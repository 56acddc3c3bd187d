// Package scraper provides the gofeed-backed implementation of the feed fetcher port.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"news-digest/internal/usecase/aggregate"
)

// DefaultUserAgent is sent with every feed request.
const DefaultUserAgent = "NewsDigestBot/1.0 (+https://github.com/news-digest)"

// DefaultFeedTimeout bounds a single feed download when no client is supplied.
const DefaultFeedTimeout = 30 * time.Second

// RSSFetcher implements aggregate.FeedFetcher using the gofeed library.
// It parses RSS, Atom and JSON Feed documents. Failed fetches are not retried.
type RSSFetcher struct {
	client    *http.Client
	userAgent string
}

// NewRSSFetcher creates a new RSSFetcher with the given HTTP client.
// A nil client gets a default client with DefaultFeedTimeout.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFeedTimeout}
	}
	return &RSSFetcher{client: client, userAgent: DefaultUserAgent}
}

// Fetch retrieves and parses the feed at feedURL and returns its entries in feed order.
// Only a real publish element sets PublishedAt; update dates are ignored.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]aggregate.FeedItem, error) {
	fp := NewFeedParser()
	fp.UserAgent = f.userAgent
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	items := make([]aggregate.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		items = append(items, toFeedItem(it))
	}

	return items, nil
}

func toFeedItem(it *gofeed.Item) aggregate.FeedItem {
	// Descriptionを優先、なければContentを使用
	summary := it.Description
	if summary == "" {
		summary = it.Content
	}

	var published *time.Time
	if it.PublishedParsed != nil {
		utc := it.PublishedParsed.UTC()
		published = &utc
	}

	return aggregate.FeedItem{
		Title:       it.Title,
		Link:        it.Link,
		Summary:     summary,
		PublishedAt: published,
	}
}
