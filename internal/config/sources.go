package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"news-digest/internal/domain/entity"
)

// SourcesFile is the YAML document accepted by LoadSources.
type SourcesFile struct {
	Sources []entity.Source `yaml:"sources"`
}

// DefaultSources returns the built-in feed table in enumeration order.
// A new slice is returned on every call so callers may modify it.
func DefaultSources() []entity.Source {
	return []entity.Source{
		{Name: "TechCrunch AI (EN)", FeedURL: "https://techcrunch.com/category/artificial-intelligence/feed/", Mode: entity.ModeFetch},
		{Name: "量子位 (中文)", FeedURL: "https://www.qbitai.com/feed/", Mode: entity.ModeFetch},
		{Name: "机器之心 (中文)", FeedURL: "https://www.jiqizhixin.com/rss", Mode: entity.ModeFetch},
		{Name: "Reuters World (EN)", FeedURL: "https://www.reuters.com/world/rss/", Mode: entity.ModeFetch},
		{Name: "BBC World (EN)", FeedURL: "http://feeds.bbci.co.uk/news/world/rss.xml", Mode: entity.ModeFetch},
		{Name: "NYT World (EN)", FeedURL: "https://rss.nytimes.com/services/xml/rss/nyt/World.xml", Mode: entity.ModeFetch},
		{Name: "MIT Tech Review (EN)", FeedURL: "https://www.technologyreview.com/c/artificial-intelligence/feed/", Mode: entity.ModeFetch},
		{Name: "ArXiv CS.AI (Paper)", FeedURL: "http://arxiv.org/rss/cs.AI", Mode: entity.ModeEmbeddedAbstract},
	}
}

// LoadSources loads the feed table from a YAML file.
// The path parameter is expected to come from a trusted source (command-line flag or SOURCES_FILE).
func LoadSources(path string) ([]entity.Source, error) {
	// #nosec G304 -- path is provided by the operator, not by remote input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	return ParseSources(data)
}

// ParseSources parses and validates a YAML feed table.
func ParseSources(data []byte) ([]entity.Source, error) {
	var file SourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources: %w", err)
	}

	if err := validateSources(file.Sources); err != nil {
		return nil, fmt.Errorf("sources validation failed: %w", err)
	}

	return file.Sources, nil
}

// ResolveSources returns the table from path, or the defaults when path is empty.
func ResolveSources(path string) ([]entity.Source, error) {
	if path == "" {
		return DefaultSources(), nil
	}
	return LoadSources(path)
}

func validateSources(sources []entity.Source) error {
	if len(sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	seen := make(map[string]struct{}, len(sources))
	for i := range sources {
		if err := sources[i].Validate(); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
		if _, dup := seen[sources[i].Name]; dup {
			return fmt.Errorf("source %d: duplicate name %q", i, sources[i].Name)
		}
		seen[sources[i].Name] = struct{}{}
	}

	return nil
}
