// Package renderer loads pages in headless Chromium through the DevTools protocol.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sony/gobreaker"

	"news-digest/internal/resilience/circuitbreaker"
	"news-digest/internal/usecase/extract"
)

// Chrome implements extract.Renderer with chromedp.
//
// Every Render starts a fresh browser (or a fresh tab on a remote browser) and
// tears it down on return, so no state leaks between articles. Calls run
// through a circuit breaker: once Chromium fails repeatedly, further renders
// fail immediately until the breaker's timeout elapses.
type Chrome struct {
	config Config
	cb     *circuitbreaker.CircuitBreaker
	run    func(ctx context.Context, url string) (string, error)
}

// NewChrome creates a Chrome renderer.
func NewChrome(cfg Config) *Chrome {
	c := &Chrome{
		config: cfg,
		cb:     circuitbreaker.New(circuitbreaker.RenderConfig()),
	}
	c.run = c.render
	return c
}

// Render navigates to url, waits for the document body plus the settle delay,
// and returns document.documentElement.outerHTML.
func (c *Chrome) Render(ctx context.Context, url string) (string, error) {
	html, err := circuitbreaker.Do(c.cb, func() (string, error) {
		return c.run(ctx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.Warn("render circuit breaker open, request rejected",
				slog.String("service", c.cb.Name()),
				slog.String("url", url))
		}
		return "", err
	}
	return html, nil
}

// CircuitBreaker returns the breaker guarding Chromium.
func (c *Chrome) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return c.cb
}

func (c *Chrome) render(ctx context.Context, url string) (string, error) {
	allocCtx, cancelAlloc := c.allocator(ctx)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, c.config.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx, c.tabActions(url, &html)...)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%w: render exceeded %v", extract.ErrTimeout, c.config.Timeout)
		}
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	if html == "" {
		return "", extract.ErrEmptyPage
	}

	return html, nil
}

// tabActions is the per-tab script. The User-Agent is set on the tab so local
// and remote browsers send the same one.
func (c *Chrome) tabActions(url string, html *string) []chromedp.Action {
	actions := []chromedp.Action{network.Enable()}
	if c.config.UserAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(c.config.UserAgent))
	}
	return append(actions,
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8"}),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(c.config.SettleDelay),
		chromedp.OuterHTML("html", html, chromedp.ByQuery),
	)
}

func (c *Chrome) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, c.config.RemoteURL)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if c.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.config.ExecPath))
	}
	return chromedp.NewExecAllocator(ctx, opts...)
}
