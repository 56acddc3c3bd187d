// Package htmltext turns HTML documents and fragments into plain text.
//
// Paragraphs implements the paragraph scan used for news pages: the first
// <article> element, else the first <main>, else the whole document is
// searched for <p> elements whose text is joined with newlines. Readable runs
// the Readability algorithm instead. StripHTML removes markup from a fragment
// such as a feed-embedded abstract.
package htmltext

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Paragraphs returns the non-empty paragraph texts of the main content region
// of an HTML document, trimmed and joined with "\n". It returns "" when the
// document cannot be parsed or has no paragraphs.
func Paragraphs(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	root := contentRoot(doc)

	var parts []string
	root.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})

	return strings.Join(parts, "\n")
}

func contentRoot(doc *goquery.Document) *goquery.Selection {
	if article := doc.Find("article").First(); article.Length() > 0 {
		return article
	}
	if main := doc.Find("main").First(); main.Length() > 0 {
		return main
	}
	return doc.Selection
}

// Readable extracts the article text of an HTML document with go-readability.
// pageURL resolves relative links and may be empty. It returns "" on failure.
func Readable(html, pageURL string) string {
	var u *url.URL
	if pageURL != "" {
		if parsed, err := url.Parse(pageURL); err == nil {
			u = parsed
		}
	}

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(article.TextContent)
}

// StripHTML returns the text content of an HTML fragment with entities decoded.
// Plain text passes through unchanged apart from entity decoding.
func StripHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return doc.Text()
}
