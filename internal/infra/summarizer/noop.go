package summarizer

import (
	"context"

	"news-digest/internal/utils/text"
)

// NoOp is a summarizer that returns the leading characters of the input.
// It serves dry runs and local development without an API key.
type NoOp struct {
	limit int
}

// NewNoOp creates a NoOp summarizer cutting input to limit characters.
func NewNoOp(limit int) *NoOp {
	if limit <= 0 {
		limit = DefaultCharacterLimit
	}
	return &NoOp{limit: limit}
}

// Summarize returns the input with newlines collapsed, cut to the limit.
func (n *NoOp) Summarize(_ context.Context, input string) (string, error) {
	return text.Truncate(text.CollapseNewlines(input), n.limit), nil
}
