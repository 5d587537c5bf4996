package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"mfspulse/internal/config"
	apperrors "mfspulse/internal/errors"
)

// HTTPFetcher retrieves payloads over plain HTTP with a bounded timeout and
// a polite request rate against the statistics portal.
type HTTPFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewHTTPFetcher creates a fetcher with the given timeout and rate limit.
func NewHTTPFetcher(timeout time.Duration, requestsPerSecond float64, logger *slog.Logger) *HTTPFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  logger.With(slog.String("component", "http_fetcher")),
	}
}

// Fetch downloads the URL body. Timeouts and non-2xx statuses come back as
// SOURCE_UNAVAILABLE errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewSourceUnavailable("rate limiter interrupted", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewSourceUnavailable("failed to build request", err)
	}
	req.Header.Set("User-Agent", config.FetchUserAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewSourceUnavailable(fmt.Sprintf("fetch failed for %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewSourceUnavailable(
			fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, url), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewSourceUnavailable("failed to read response body", err)
	}

	f.logger.Debug("fetched payload",
		slog.String("url", url),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))
	return body, nil
}

// BrowserFetcher renders the page in a headless browser before capturing its
// HTML. Used when the portal assembles its tables client-side and a plain
// GET returns an empty shell.
type BrowserFetcher struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewBrowserFetcher creates a headless-browser fetcher.
func NewBrowserFetcher(timeout time.Duration, logger *slog.Logger) *BrowserFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserFetcher{
		timeout: timeout,
		logger:  logger.With(slog.String("component", "browser_fetcher")),
	}
}

// Fetch navigates to the URL and returns the rendered document HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, apperrors.NewSourceUnavailable(fmt.Sprintf("browser render failed for %s", url), err)
	}

	f.logger.Debug("rendered page", slog.String("url", url), slog.Int("bytes", len(html)))
	return []byte(html), nil
}
