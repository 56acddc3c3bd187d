// Package digest orchestrates one digest run: aggregate, extract, summarize, compose and send.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"news-digest/internal/domain/entity"
	"news-digest/internal/observability/logging"
	"news-digest/internal/observability/metrics"
	"news-digest/internal/observability/tracing"
	"news-digest/internal/resilience/ratelimit"
	"news-digest/internal/usecase/extract"
)

const (
	// DefaultTitle is the digest header text.
	DefaultTitle = "今日新闻摘要"

	// DefaultFooter is the note under the digest body.
	DefaultFooter = "由 news-digest 自动生成"

	// DefaultPerFeedLimit is the per-source article cap.
	DefaultPerFeedLimit = 4

	dateLayout = "2006-01-02"
)

// Options configures a Service.
type Options struct {
	Sources      []entity.Source
	PerFeedLimit int

	// InterArticleDelay spaces article processing. Zero disables pacing.
	InterArticleDelay time.Duration

	// Concurrency is the number of articles processed at once. Values below 2 run sequentially.
	Concurrency int

	// Location is the time zone of the digest date. Nil means UTC.
	Location *time.Location

	// Clock returns the current time. Nil means time.Now.
	Clock func() time.Time

	Title  string
	Footer string
}

// RunStats contains statistics about one run.
type RunStats struct {
	Sources       int
	Articles      int
	Extracted     map[extract.Tier]int
	NoContent     int
	Summarized    int
	SummaryFailed int
	Skipped       int
	Delivered     bool
	DeliveryError error
	Duration      time.Duration
}

// Service runs the digest pipeline.
type Service struct {
	aggregator Aggregator
	extractor  Extractor
	summarizer Summarizer
	notifier   Notifier
	limiter    *ratelimit.Limiter

	sources      []entity.Source
	perFeedLimit int
	concurrency  int
	location     *time.Location
	clock        func() time.Time
	title        string
	footer       string
}

// NewService creates a digest Service with the provided dependencies.
func NewService(aggregator Aggregator, extractor Extractor, summarizer Summarizer, notifier Notifier, opts Options) *Service {
	s := &Service{
		aggregator:   aggregator,
		extractor:    extractor,
		summarizer:   summarizer,
		notifier:     notifier,
		limiter:      ratelimit.New(opts.InterArticleDelay),
		sources:      opts.Sources,
		perFeedLimit: opts.PerFeedLimit,
		concurrency:  opts.Concurrency,
		location:     opts.Location,
		clock:        opts.Clock,
		title:        opts.Title,
		footer:       opts.Footer,
	}
	if s.perFeedLimit <= 0 {
		s.perFeedLimit = DefaultPerFeedLimit
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.title == "" {
		s.title = DefaultTitle
	}
	if s.footer == "" {
		s.footer = DefaultFooter
	}
	return s
}

// Run executes one digest run. It returns ErrNoArticles when nothing qualified,
// and a context error when the run was cancelled while processing articles.
// A delivery failure is reported in RunStats, not as an error.
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "digest.Run")
	defer span.End()

	logger := logging.FromContext(ctx)
	start := time.Now()
	stats := &RunStats{
		Sources:   len(s.sources),
		Extracted: make(map[extract.Tier]int),
	}
	defer func() {
		stats.Duration = time.Since(start)
	}()

	now := s.clock().UTC()
	articles := s.aggregate(ctx, now)
	stats.Articles = len(articles)
	metrics.RecordRunArticles(len(articles))
	span.SetAttributes(attribute.Int("digest.articles", len(articles)))

	if len(articles) == 0 {
		logger.Info("no new articles in window")
		return stats, ErrNoArticles
	}

	items, err := s.processArticles(ctx, articles, stats)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}

	d := Digest{
		Title:  s.title,
		Date:   now.In(s.location).Format(dateLayout),
		Body:   FormatDigest(items),
		Items:  items,
		Footer: s.footer,
	}
	s.deliver(ctx, d, stats)

	logger.Info("digest run completed",
		slog.Int("sources", stats.Sources),
		slog.Int("articles", stats.Articles),
		slog.Int("no_content", stats.NoContent),
		slog.Int("summarized", stats.Summarized),
		slog.Int("summary_failed", stats.SummaryFailed),
		slog.Int("skipped", stats.Skipped),
		slog.Bool("delivered", stats.Delivered),
		slog.Duration("duration", time.Since(start)))

	return stats, nil
}

func (s *Service) aggregate(ctx context.Context, now time.Time) []entity.Article {
	ctx, span := tracing.GetTracer().Start(ctx, "digest.aggregate")
	defer span.End()

	articles := s.aggregator.Aggregate(ctx, s.sources, s.perFeedLimit, now)
	span.SetAttributes(
		attribute.Int("digest.sources", len(s.sources)),
		attribute.Int("digest.articles", len(articles)))
	return articles
}

// processArticles extracts and summarizes every article. Items keep aggregation
// order whatever the concurrency.
func (s *Service) processArticles(ctx context.Context, articles []entity.Article, stats *RunStats) ([]entity.DigestItem, error) {
	items := make([]entity.DigestItem, len(articles))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)

	for i, a := range articles {
		eg.Go(func() error {
			if err := s.limiter.Wait(egCtx); err != nil {
				return fmt.Errorf("wait for article slot: %w", err)
			}

			item, res, outcome := s.processArticle(egCtx, i, len(articles), a)
			items[i] = item

			mu.Lock()
			defer mu.Unlock()
			if res.OK() {
				stats.Extracted[res.Tier]++
			} else {
				stats.NoContent++
			}
			switch outcome {
			case OutcomeSummarized:
				stats.Summarized++
			case OutcomeFailed:
				stats.SummaryFailed++
			case OutcomeSkipped:
				stats.Skipped++
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) processArticle(ctx context.Context, index, total int, a entity.Article) (entity.DigestItem, extract.Result, Outcome) {
	ctx, span := tracing.GetTracer().Start(ctx, "digest.process_article")
	defer span.End()
	span.SetAttributes(
		attribute.String("article.source", a.Source),
		attribute.String("article.link", a.Link))

	logger := logging.FromContext(ctx)
	logger.Info("processing article",
		slog.Int("index", index+1),
		slog.Int("total", total),
		slog.String("source", a.Source),
		slog.String("title", a.Title))

	res := s.extractor.ExtractWithTier(ctx, a)
	span.SetAttributes(attribute.String("extract.tier", string(res.Tier)))

	summary, outcome := summarize(ctx, s.summarizer, res.Text)
	span.SetAttributes(attribute.String("summary.outcome", string(outcome)))

	return entity.NewDigestItem(a, summary), res, outcome
}

func (s *Service) deliver(ctx context.Context, d Digest, stats *RunStats) {
	ctx, span := tracing.GetTracer().Start(ctx, "digest.deliver")
	defer span.End()

	logger := logging.FromContext(ctx)
	if d.Body == "" {
		logger.Info("digest body empty, nothing sent")
		return
	}

	if err := s.notifier.Send(ctx, d); err != nil {
		stats.DeliveryError = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var de *DeliveryError
		if errors.As(err, &de) {
			logger.Error("digest delivery rejected",
				slog.String("channel", de.Channel),
				slog.Int("status_code", de.StatusCode),
				slog.String("body", de.Body))
		} else {
			logger.Error("digest delivery failed", slog.Any("error", err))
		}
		return
	}

	stats.Delivered = true
	logger.Info("digest delivered", slog.Int("items", len(d.Items)))
}
