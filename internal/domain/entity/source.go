package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// ExtractionMode selects how body text is obtained for articles of a source.
type ExtractionMode string

const (
	// ModeEmbeddedAbstract uses the abstract embedded in the feed entry (paper feeds such as ArXiv).
	ModeEmbeddedAbstract ExtractionMode = "embedded_abstract"

	// ModeFetch fetches the page and scans paragraph text, falling back to a headless render.
	ModeFetch ExtractionMode = "fetch"

	// ModeReadability fetches the page and extracts text with the Readability algorithm.
	// It falls back to the paragraph scan and then to a headless render like ModeFetch.
	ModeReadability ExtractionMode = "readability"
)

// Valid reports whether m is a known extraction mode.
func (m ExtractionMode) Valid() bool {
	switch m {
	case ModeEmbeddedAbstract, ModeFetch, ModeReadability:
		return true
	}
	return false
}

// Source represents one configured syndication feed.
type Source struct {
	Name    string         `yaml:"name"`
	FeedURL string         `yaml:"url"`
	Mode    ExtractionMode `yaml:"mode"`
}

// Validate validates the Source entity fields.
// An empty Mode is normalized to ModeFetch.
func (s *Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Message: "source name is required"}
	}

	if s.FeedURL == "" {
		return &ValidationError{Field: "url", Message: "feed URL is required"}
	}
	u, err := url.Parse(s.FeedURL)
	if err != nil {
		return fmt.Errorf("%w: parse feed URL: %v", ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "feed URL must use http or https scheme"}
	}
	if u.Host == "" {
		return &ValidationError{Field: "url", Message: "feed URL must have a valid host"}
	}

	// 空のモードはfetchとみなす
	if s.Mode == "" {
		s.Mode = ModeFetch
	}
	if !s.Mode.Valid() {
		return &ValidationError{
			Field:   "mode",
			Message: fmt.Sprintf("invalid mode %q (must be embedded_abstract, fetch, or readability)", s.Mode),
		}
	}

	return nil
}
