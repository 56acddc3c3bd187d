package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-digest/internal/infra/scraper"
)

func serveFeed(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, scraper.DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRSSFetcher_Fetch_RSS(t *testing.T) {
	// pubDateはUTC以外のオフセットで配信される
	server := serveFeed(t, "application/rss+xml", `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>Article 1</title>
      <link>https://example.com/article1</link>
      <description>&lt;p&gt;Abstract one&lt;/p&gt;</description>
      <pubDate>Mon, 01 Jan 2024 08:00:00 +0800</pubDate>
    </item>
    <item>
      <title>Article 2</title>
      <link>https://example.com/article2</link>
      <description>Description 2</description>
    </item>
  </channel>
</rss>`)

	items, err := scraper.NewRSSFetcher(&http.Client{Timeout: 5 * time.Second}).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Article 1", items[0].Title)
	assert.Equal(t, "https://example.com/article1", items[0].Link)
	assert.Equal(t, "<p>Abstract one</p>", items[0].Summary)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, time.UTC, items[0].PublishedAt.Location())
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(*items[0].PublishedAt))

	assert.Equal(t, "Article 2", items[1].Title)
	assert.Nil(t, items[1].PublishedAt, "entries without a date keep a nil publish time")
}

func TestRSSFetcher_Fetch_Atom(t *testing.T) {
	server := serveFeed(t, "application/atom+xml", `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <updated>2024-01-01T00:00:00Z</updated>
  <entry>
    <title>Atom Article</title>
    <link href="https://example.com/atom1"/>
    <published>2024-01-02T03:04:05Z</published>
    <content type="html">Full content</content>
  </entry>
</feed>`)

	items, err := scraper.NewRSSFetcher(nil).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Atom Article", items[0].Title)
	assert.Equal(t, "https://example.com/atom1", items[0].Link)
	assert.Equal(t, "Full content", items[0].Summary)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, 2024, items[0].PublishedAt.Year())
}

func TestRSSFetcher_Fetch_UpdatedIsNotPublished(t *testing.T) {
	// 更新日時しかないエントリは公開日時なしとして扱う
	t.Run("atom entry with only updated", func(t *testing.T) {
		server := serveFeed(t, "application/atom+xml", `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Feed</title>
  <updated>2024-01-02T03:04:05Z</updated>
  <entry>
    <title>Updated Only</title>
    <link href="https://example.com/updated"/>
    <updated>2024-01-02T03:04:05Z</updated>
  </entry>
  <entry>
    <title>Published</title>
    <link href="https://example.com/published"/>
    <published>2024-01-01T00:00:00Z</published>
    <updated>2024-01-02T03:04:05Z</updated>
  </entry>
</feed>`)

		items, err := scraper.NewRSSFetcher(nil).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		require.Len(t, items, 2)

		assert.Nil(t, items[0].PublishedAt)
		require.NotNil(t, items[1].PublishedAt)
		assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(*items[1].PublishedAt))
	})

	t.Run("rss item with only dc:date", func(t *testing.T) {
		server := serveFeed(t, "application/rss+xml", `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>DC Only</title>
      <link>https://example.com/dc</link>
      <dc:date>2024-01-02T03:04:05Z</dc:date>
    </item>
    <item>
      <title>PubDate</title>
      <link>https://example.com/pub</link>
      <pubDate>Mon, 01 Jan 2024 00:00:00 +0000</pubDate>
      <dc:date>2024-01-02T03:04:05Z</dc:date>
    </item>
  </channel>
</rss>`)

		items, err := scraper.NewRSSFetcher(nil).Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		require.Len(t, items, 2)

		assert.Nil(t, items[0].PublishedAt)
		require.NotNil(t, items[1].PublishedAt)
		assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(*items[1].PublishedAt))
	})
}

func TestRSSFetcher_Fetch_Errors(t *testing.T) {
	t.Run("malformed feed", func(t *testing.T) {
		server := serveFeed(t, "text/html", "<html><body>not a feed</body></html>")
		_, err := scraper.NewRSSFetcher(nil).Fetch(context.Background(), server.URL)
		assert.Error(t, err)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := scraper.NewRSSFetcher(nil).Fetch(context.Background(), server.URL)
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := serveFeed(t, "application/rss+xml", `<rss version="2.0"><channel></channel></rss>`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := scraper.NewRSSFetcher(nil).Fetch(ctx, server.URL)
		assert.Error(t, err)
	})
}
