package extract

import "context"

// PageFetcher downloads the HTML of a page with a plain HTTP GET.
//
// Implementations decode the body to UTF-8 and must enforce a timeout, a body
// size limit and a redirect limit. Errors wrap the sentinels of this package.
type PageFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// Renderer loads a page in a headless browser and returns the serialized DOM
// after client-side scripts have run.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}
