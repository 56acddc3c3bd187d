package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"news-digest/internal/usecase/extract"
)

// StaticFetcher implements extract.PageFetcher with a plain HTTP GET.
//
// Features:
//   - SSRF prevention via URL validation, including every redirect target
//   - Size limiting to prevent memory exhaustion
//   - Per-request timeout
//   - Charset detection so GBK/Big5/Shift_JIS pages decode to UTF-8
//
// Thread safety: StaticFetcher is safe for concurrent use.
type StaticFetcher struct {
	client *http.Client
	config Config
}

// NewStaticFetcher creates a StaticFetcher with the given configuration.
//
// Example:
//
//	f := NewStaticFetcher(DefaultConfig())
//	html, err := f.FetchHTML(ctx, "https://example.com/article")
func NewStaticFetcher(cfg Config) *StaticFetcher {
	f := &StaticFetcher{config: cfg}

	f.client = &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", extract.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.Context(), req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return f
}

// FetchHTML downloads the page at urlStr and returns its HTML decoded to UTF-8.
//
// Errors:
//   - extract.ErrInvalidURL, extract.ErrPrivateIP: URL rejected before the request
//   - extract.ErrTooManyRedirects: redirect chain too long
//   - extract.ErrTimeout: request exceeded Config.Timeout
//   - extract.ErrHTTPStatus: status other than 200
//   - extract.ErrBodyTooLarge: body exceeded Config.MaxBodySize
//   - extract.ErrEmptyPage: body empty or whitespace only
func (f *StaticFetcher) FetchHTML(ctx context.Context, urlStr string) (string, error) {
	if err := validateURL(ctx, urlStr, f.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", extract.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: request exceeded %v", extract.ErrTimeout, f.config.Timeout)
		}
		// Surface redirect validation errors unwrapped from *url.Error
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", extract.ErrHTTPStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: reading body exceeded %v", extract.ErrTimeout, f.config.Timeout)
		}
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: response exceeds limit %d bytes", extract.ErrBodyTooLarge, f.config.MaxBodySize)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", extract.ErrEmptyPage
	}

	return decode(body, resp.Header.Get("Content-Type")), nil
}

// decode converts body to UTF-8 using the Content-Type header, a BOM or a
// <meta charset> declaration. Undecodable bodies are returned as-is.
func decode(body []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(body)
	}
	return strings.ToValidUTF8(string(decoded), "")
}
