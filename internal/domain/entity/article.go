// Package entity defines the core domain entities and validation logic for the digest pipeline.
// It contains the fundamental business objects such as Article, Source and DigestItem,
// along with their validation rules and domain-specific errors.
package entity

import "time"

// Article represents one candidate story picked from a feed during a single run.
// Link is the identity of the article within the run and also the fetch target.
type Article struct {
	Title string
	Link  string

	// Source is the display name of the originating feed.
	Source string

	// Mode is copied from the originating Source and drives extraction strategy selection.
	Mode ExtractionMode

	// EmbeddedSummary is the feed-provided abstract (HTML allowed). Empty for most sources.
	EmbeddedSummary string

	// PublishedAt is always in UTC. Entries without a publish time never become Articles.
	PublishedAt time.Time
}

// DigestItem is one rendered entry of the final digest.
type DigestItem struct {
	Title   string
	Summary string
	Source  string
	Link    string
}

// NewDigestItem builds the digest tuple for an article and its summary.
func NewDigestItem(a Article, summary string) DigestItem {
	return DigestItem{
		Title:   a.Title,
		Summary: summary,
		Source:  a.Source,
		Link:    a.Link,
	}
}
