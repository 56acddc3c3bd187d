package digest

import (
	"context"
	"time"

	"news-digest/internal/domain/entity"
	"news-digest/internal/usecase/extract"
)

// Aggregator selects the candidate articles of a run.
type Aggregator interface {
	Aggregate(ctx context.Context, sources []entity.Source, perFeedLimit int, now time.Time) []entity.Article
}

// Extractor obtains the body text of one article.
type Extractor interface {
	ExtractWithTier(ctx context.Context, a entity.Article) extract.Result
}

// Summarizer is an interface for AI-powered text summarization.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Notifier delivers a composed digest to one channel.
type Notifier interface {
	Send(ctx context.Context, d Digest) error
}

// Digest is the composed message handed to a Notifier.
type Digest struct {
	// Title is the header text without the date, e.g. "今日新闻摘要".
	Title string

	// Date is the run date formatted as YYYY-MM-DD in the digest time zone.
	Date string

	// Body is the lark_md / markdown text built by FormatDigest.
	Body string

	// Items are the tuples Body was built from, for channels with their own layout.
	Items []entity.DigestItem

	// Footer is the note shown under the body.
	Footer string
}
