package scraper

import (
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

// NewFeedParser returns a gofeed parser whose items only carry a publish time
// when the feed declares one.
func NewFeedParser() *gofeed.Parser {
	fp := gofeed.NewParser()
	fp.AtomTranslator = &publishedOnlyAtomTranslator{}
	fp.RSSTranslator = &publishedOnlyRSSTranslator{}
	return fp
}

// publishedOnlyAtomTranslator keeps an entry's publish time only when the
// entry carries <published>. The default translator substitutes <updated>.
type publishedOnlyAtomTranslator struct {
	gofeed.DefaultAtomTranslator
}

func (t *publishedOnlyAtomTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	result, err := t.DefaultAtomTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}

	src, _ := feed.(*atom.Feed)
	if src == nil || len(src.Entries) != len(result.Items) {
		return result, nil
	}
	for i, entry := range src.Entries {
		if entry.PublishedParsed == nil {
			clearPublished(result.Items[i])
		}
	}
	return result, nil
}

// publishedOnlyRSSTranslator keeps an item's publish time only when the item
// carries <pubDate>. The default translator substitutes dc:date.
type publishedOnlyRSSTranslator struct {
	gofeed.DefaultRSSTranslator
}

func (t *publishedOnlyRSSTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	result, err := t.DefaultRSSTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}

	src, _ := feed.(*rss.Feed)
	if src == nil || len(src.Items) != len(result.Items) {
		return result, nil
	}
	for i, item := range src.Items {
		if item.PubDateParsed == nil {
			clearPublished(result.Items[i])
		}
	}
	return result, nil
}

func clearPublished(it *gofeed.Item) {
	it.Published = ""
	it.PublishedParsed = nil
}
