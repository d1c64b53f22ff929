// Package fetcher performs the single best-effort GET each calendar page gets.
//
// A Fetcher never returns an error: a non-2xx status, network failure, timeout or
// cancelled context all come back as ("", false), and the caller skips that unit of
// work. A fixed delay precedes every request so one sequential pipeline run cannot
// exceed one request per delay against an upstream host.
package fetcher

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pfrederiksen/racecal/internal/logger"
)

const (
	DefaultDelay     = 1 * time.Second
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxRedirects     = 10
)

// Fetcher returns the body at url, or false when it could not be fetched
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, bool)
}

// Options configures an HTTP fetcher. A zero Timeout, UserAgent, Logger or
// Metrics selects the default; a zero or negative Delay disables the wait.
type Options struct {
	Delay     time.Duration
	Timeout   time.Duration
	UserAgent string
	Logger    *logger.Logger
	Metrics   *logger.Metrics
}

// HTTP is a Fetcher that issues browser-like GET requests
type HTTP struct {
	client  *resty.Client
	delay   time.Duration
	log     *logger.Logger
	metrics *logger.Metrics
}

// browserHeaders is the request profile of a desktop Chrome navigation
func browserHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":                userAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-User":            "?1",
		"Sec-Fetch-Dest":            "document",
		"Sec-CH-UA":                 `"Chromium";v="120", "Google Chrome";v="120", "Not:A-Brand";v="99"`,
		"Sec-CH-UA-Mobile":          "?0",
	}
}

// New creates an HTTP fetcher
func New(opts Options) *HTTP {
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = logger.DefaultMetrics()
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeaders(browserHeaders(opts.UserAgent)).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetRetryCount(0)

	return &HTTP{
		client:  client,
		delay:   opts.Delay,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

// Fetch waits the configured delay, then GETs url once
func (h *HTTP) Fetch(ctx context.Context, url string) (string, bool) {
	if !h.wait(ctx) {
		return "", false
	}

	start := time.Now()
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Referer", url).
		Get(url)
	h.metrics.RecordTiming("fetch", time.Since(start))

	if err != nil {
		h.metrics.IncrCounter("fetch.failed")
		h.log.Warn("fetch failed", logger.Fields{"url": url, "error": err.Error()})
		return "", false
	}
	if !resp.IsSuccess() {
		h.metrics.IncrCounter("fetch.failed")
		h.log.Warn("unexpected status code", logger.Fields{"url": url, "status": resp.StatusCode()})
		return "", false
	}

	h.metrics.IncrCounter("fetch.ok")
	h.log.Debug("fetched", logger.Fields{"url": url, "bytes": len(resp.Body())})
	return resp.String(), true
}

func (h *HTTP) wait(ctx context.Context) bool {
	if h.delay == 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(h.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Static serves fixed bodies by URL; any other URL is reported as unavailable.
// It backs offline runs over saved pages and pipeline tests.
type Static map[string]string

// Fetch implements Fetcher
func (s Static) Fetch(ctx context.Context, url string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	body, ok := s[url]
	return body, ok
}

var _ Fetcher = (*HTTP)(nil)
var _ Fetcher = Static(nil)
