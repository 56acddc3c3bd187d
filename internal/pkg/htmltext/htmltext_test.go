package htmltext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParagraphs(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "article preferred over main and body",
			html: `<html><body>
				<p>nav text</p>
				<main><p>main text</p></main>
				<article><p> First </p><p></p><div><p>Second</p></div></article>
			</body></html>`,
			want: "First\nSecond",
		},
		{
			name: "main when no article",
			html: `<html><body><p>footer</p><main><p>Lead</p><p>Body</p></main></body></html>`,
			want: "Lead\nBody",
		},
		{
			name: "whole document fallback",
			html: `<html><body><div><p>One</p></div><p>Two</p></body></html>`,
			want: "One\nTwo",
		},
		{
			name: "only first article is used",
			html: `<article><p>A</p></article><article><p>B</p></article>`,
			want: "A",
		},
		{
			name: "no paragraphs",
			html: `<html><body><div>just a div</div></body></html>`,
			want: "",
		},
		{
			name: "article without paragraphs does not fall back",
			html: `<html><body><article><div>x</div></article><p>outside</p></body></html>`,
			want: "",
		},
		{
			name: "entities decoded and inline markup flattened",
			html: `<article><p>Tom &amp; Jerry <b>return</b></p></article>`,
			want: "Tom & Jerry return",
		},
		{
			name: "empty input",
			html: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paragraphs(tt.html))
		})
	}
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Abstract: we propose X.", StripHTML("<p>Abstract: we propose <em>X</em>.</p>"))
	assert.Equal(t, "a < b & c", StripHTML("a &lt; b &amp; c"))
	assert.Equal(t, "", strings.TrimSpace(StripHTML("<p>  </p>")))
	assert.Equal(t, "line one\nline two", StripHTML("line one\nline two"))
}

func TestReadable(t *testing.T) {
	body := strings.Repeat("The committee published its findings on the new policy today, citing months of review. ", 8)
	html := `<html><head><title>Policy</title></head><body>
		<nav><a href="/">Home</a></nav>
		<article><h1>Policy findings</h1><p>` + body + `</p><p>` + body + `</p></article>
		<footer>Copyright</footer>
	</body></html>`

	got := Readable(html, "https://example.com/news/1")

	assert.Contains(t, got, "The committee published its findings")
	assert.NotContains(t, got, "Copyright")
	assert.Equal(t, strings.TrimSpace(got), got)
}

func TestReadable_Empty(t *testing.T) {
	assert.Equal(t, "", Readable("", ":bad url"))
}
