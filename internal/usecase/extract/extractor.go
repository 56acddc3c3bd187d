// Package extract obtains the body text of an article through a chain of tiers:
// the abstract embedded in the feed, a static HTML fetch with a paragraph scan
// (or Readability), and finally a headless browser render.
package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"news-digest/internal/domain/entity"
	"news-digest/internal/observability/logging"
	"news-digest/internal/observability/metrics"
	"news-digest/internal/pkg/htmltext"
	"news-digest/internal/utils/text"
)

// DefaultMaxContentChars is the truncation length used when Options leaves it unset.
const DefaultMaxContentChars = 3000

// Tier identifies the extraction step that produced the text.
type Tier string

const (
	TierNone             Tier = ""
	TierEmbeddedAbstract Tier = "embedded_abstract"
	TierStatic           Tier = "static"
	TierReadability      Tier = "readability"
	TierRendered         Tier = "rendered"
)

// Result is the outcome of one extraction.
type Result struct {
	Text string
	Tier Tier
}

// OK reports whether any tier produced text.
func (r Result) OK() bool {
	return r.Tier != TierNone && r.Text != ""
}

// Options configures an Extractor.
type Options struct {
	// MaxContentChars is the maximum length of returned text in characters.
	MaxContentChars int
}

// Extractor runs the tier chain for one article at a time. It is safe for concurrent use.
type Extractor struct {
	fetcher  PageFetcher
	renderer Renderer
	maxChars int
}

// NewExtractor creates an Extractor. A nil renderer disables the rendered tier;
// a nil fetcher disables the static tiers.
func NewExtractor(fetcher PageFetcher, renderer Renderer, opts Options) *Extractor {
	maxChars := opts.MaxContentChars
	if maxChars <= 0 {
		maxChars = DefaultMaxContentChars
	}
	return &Extractor{fetcher: fetcher, renderer: renderer, maxChars: maxChars}
}

// Extract returns the article text and whether any tier succeeded.
func (e *Extractor) Extract(ctx context.Context, a entity.Article) (string, bool) {
	res := e.ExtractWithTier(ctx, a)
	return res.Text, res.OK()
}

// ExtractWithTier runs the tier chain and reports which tier produced the text.
func (e *Extractor) ExtractWithTier(ctx context.Context, a entity.Article) Result {
	logger := logging.FromContext(ctx).With(slog.String("link", a.Link))

	// Embedded abstract sources never touch the network when they carry an abstract.
	if a.Mode == entity.ModeEmbeddedAbstract && strings.TrimSpace(a.EmbeddedSummary) != "" {
		start := time.Now()
		abstract := text.CollapseNewlines(htmltext.StripHTML(a.EmbeddedSummary))
		metrics.RecordExtractionAttempt(string(TierEmbeddedAbstract), abstract != "", time.Since(start))
		if abstract == "" {
			logger.Info("embedded abstract is empty after stripping markup")
			return Result{}
		}
		return e.finish(logger, TierEmbeddedAbstract, abstract)
	}

	if e.fetcher != nil {
		if res, ok := e.fromStatic(ctx, logger, a); ok {
			return res
		}
	}

	if e.renderer != nil && ctx.Err() == nil {
		if res, ok := e.fromRendered(ctx, logger, a); ok {
			return res
		}
	}

	logger.Info("no content extracted")
	return Result{}
}

func (e *Extractor) fromStatic(ctx context.Context, logger *slog.Logger, a entity.Article) (Result, bool) {
	start := time.Now()
	html, err := e.fetcher.FetchHTML(ctx, a.Link)
	if err != nil {
		metrics.RecordExtractionAttempt(string(TierStatic), false, time.Since(start))
		logger.Debug("static fetch failed", slog.Any("error", err))
		return Result{}, false
	}

	if a.Mode == entity.ModeReadability {
		readable := htmltext.Readable(html, a.Link)
		metrics.RecordExtractionAttempt(string(TierReadability), readable != "", time.Since(start))
		if readable != "" {
			return e.finish(logger, TierReadability, readable), true
		}
		logger.Debug("readability found no content, trying paragraph scan")
	}

	paragraphs := htmltext.Paragraphs(html)
	metrics.RecordExtractionAttempt(string(TierStatic), paragraphs != "", time.Since(start))
	if paragraphs == "" {
		logger.Debug("static page has no paragraphs")
		return Result{}, false
	}
	return e.finish(logger, TierStatic, paragraphs), true
}

func (e *Extractor) fromRendered(ctx context.Context, logger *slog.Logger, a entity.Article) (Result, bool) {
	start := time.Now()
	html, err := e.renderer.Render(ctx, a.Link)
	if err != nil {
		metrics.RecordExtractionAttempt(string(TierRendered), false, time.Since(start))
		logger.Info("rendered fetch failed", slog.Any("error", err))
		return Result{}, false
	}

	paragraphs := htmltext.Paragraphs(html)
	metrics.RecordExtractionAttempt(string(TierRendered), paragraphs != "", time.Since(start))
	if paragraphs == "" {
		logger.Info("rendered page has no paragraphs")
		return Result{}, false
	}
	return e.finish(logger, TierRendered, paragraphs), true
}

func (e *Extractor) finish(logger *slog.Logger, tier Tier, body string) Result {
	body = text.Truncate(body, e.maxChars)
	length := text.CountRunes(body)
	metrics.RecordExtractedLength(length)
	logger.Debug("content extracted",
		slog.String("tier", string(tier)),
		slog.Int("length", length))
	return Result{Text: body, Tier: tier}
}
