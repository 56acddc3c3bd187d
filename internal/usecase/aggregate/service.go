// Package aggregate collects the candidate articles of a run from every configured feed.
package aggregate

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"news-digest/internal/domain/entity"
	"news-digest/internal/observability/logging"
	"news-digest/internal/observability/metrics"
)

// DefaultRecencyWindow is how far back an entry may be published to qualify.
const DefaultRecencyWindow = 24 * time.Hour

// Rejection reasons recorded in metrics.
const (
	reasonNoDate    = "no_date"
	reasonTooOld    = "too_old"
	reasonNoLink    = "no_link"
	reasonDuplicate = "duplicate"
)

// Options configures a Service.
type Options struct {
	// RecencyWindow is the look-back window. Zero means DefaultRecencyWindow.
	RecencyWindow time.Duration

	// FeedConcurrency is the number of feeds downloaded at once. Values below 2 fetch sequentially.
	FeedConcurrency int
}

// Service selects articles from feeds.
type Service struct {
	fetcher     FeedFetcher
	window      time.Duration
	concurrency int
}

// NewService creates an aggregation Service.
func NewService(fetcher FeedFetcher, opts Options) *Service {
	window := opts.RecencyWindow
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	concurrency := opts.FeedConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{fetcher: fetcher, window: window, concurrency: concurrency}
}

// feedResult is the outcome of downloading one source.
type feedResult struct {
	items []FeedItem
	err   error
}

// Aggregate returns the qualifying articles of all sources, source-major and in feed order.
// An entry qualifies when it has a publish time strictly after now minus the window,
// a non-empty link not yet accepted in this call, and its source has accepted fewer
// than perFeedLimit entries. A failing source contributes nothing.
func (s *Service) Aggregate(ctx context.Context, sources []entity.Source, perFeedLimit int, now time.Time) []entity.Article {
	logger := logging.FromContext(ctx)
	start := time.Now()
	cutoff := now.UTC().Add(-s.window)

	results := s.fetchAll(ctx, sources)

	if perFeedLimit < 0 {
		perFeedLimit = 0
	}

	seen := NewLinkSet()
	articles := make([]entity.Article, 0, len(sources)*perFeedLimit)

	for i, src := range sources {
		logger.Info("processing source", slog.String("source", src.Name))

		res := results[i]
		if res.err != nil {
			logger.Warn("failed to fetch feed",
				slog.String("source", src.Name),
				slog.String("feed_url", src.FeedURL),
				slog.Any("error", res.err))
			continue
		}

		picked := selectEntries(src, res.items, perFeedLimit, cutoff, seen)
		metrics.RecordArticlesAggregated(src.Name, len(picked))
		articles = append(articles, picked...)

		logger.Info("source processed",
			slog.String("source", src.Name),
			slog.Int("feed_items", len(res.items)),
			slog.Int("accepted", len(picked)))
	}

	logger.Info("aggregation completed",
		slog.Int("sources", len(sources)),
		slog.Int("articles", len(articles)),
		slog.Duration("duration", time.Since(start)))

	return articles
}

// fetchAll downloads every feed. Results are indexed like sources so selection
// order never depends on download timing.
func (s *Service) fetchAll(ctx context.Context, sources []entity.Source) []feedResult {
	results := make([]feedResult, len(sources))

	if s.concurrency < 2 {
		for i, src := range sources {
			results[i] = s.fetchOne(ctx, src)
		}
		return results
	}

	var eg errgroup.Group
	eg.SetLimit(s.concurrency)
	for i, src := range sources {
		eg.Go(func() error {
			results[i] = s.fetchOne(ctx, src)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

func (s *Service) fetchOne(ctx context.Context, src entity.Source) feedResult {
	start := time.Now()
	items, err := s.fetcher.Fetch(ctx, src.FeedURL)
	metrics.RecordFeedFetch(src.Name, err == nil, time.Since(start))
	return feedResult{items: items, err: err}
}

// selectEntries applies the window, dedup and cap rules to one source's items.
func selectEntries(src entity.Source, items []FeedItem, limit int, cutoff time.Time, seen *LinkSet) []entity.Article {
	var picked []entity.Article

	for _, it := range items {
		if len(picked) >= limit {
			break
		}
		if it.PublishedAt == nil {
			metrics.RecordEntryRejected(reasonNoDate)
			continue
		}
		published := it.PublishedAt.UTC()
		if !published.After(cutoff) {
			metrics.RecordEntryRejected(reasonTooOld)
			continue
		}
		if it.Link == "" {
			metrics.RecordEntryRejected(reasonNoLink)
			continue
		}
		if !seen.Add(it.Link) {
			metrics.RecordEntryRejected(reasonDuplicate)
			continue
		}

		picked = append(picked, entity.Article{
			Title:           it.Title,
			Link:            it.Link,
			Source:          src.Name,
			Mode:            src.Mode,
			EmbeddedSummary: it.Summary,
			PublishedAt:     published,
		})
	}

	return picked
}
