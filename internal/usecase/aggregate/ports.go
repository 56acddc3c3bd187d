package aggregate

import (
	"context"
	"time"
)

// FeedFetcher is an interface for fetching RSS/Atom feeds from a URL.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]FeedItem, error)
}

// FeedItem represents a single item from an RSS/Atom feed.
type FeedItem struct {
	Title string
	Link  string

	// Summary is the feed-level description of the entry. HTML allowed.
	Summary string

	// PublishedAt is in UTC, or nil when the entry carries no parseable date.
	PublishedAt *time.Time
}
