package extract

import "errors"

// Sentinel errors for page retrieval. Fetcher and renderer implementations wrap
// these so callers can tell failure modes apart with errors.Is.
var (
	// ErrInvalidURL indicates the URL format is invalid or uses an unsupported scheme.
	// Only http:// and https:// schemes are supported.
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a private, loopback or link-local address.
	ErrPrivateIP = errors.New("URL resolves to private IP address")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the configured size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request did not complete within its timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrHTTPStatus indicates the page answered with a status other than 200.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrEmptyPage indicates the page body was empty.
	ErrEmptyPage = errors.New("empty page")

	// ErrNoContent indicates no tier produced any text for an article.
	ErrNoContent = errors.New("no content extracted")
)
