// Package fetch provides the polite, retried HTTP client shared by every
// portal scraper, plus detection of JS-only shell responses that require the
// browser-rendering fallback.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// ErrUnavailable marks a page that could not be fetched after retries.
// Callers treat it as "this page unavailable", never as a fatal condition.
var ErrUnavailable = errors.New("page unavailable")

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// jsShellTextThreshold is the maximum visible-text length below which a
// response is suspected to be a client-side-only shell.
const jsShellTextThreshold = 500

// RetryPolicy is an explicit, independently testable retry specification.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	BackoffFactor  float64
	RetryStatuses  map[int]struct{}
}

// DefaultRetryPolicy mirrors the portals' observed flakiness: three attempts
// with exponential backoff on throttling and transient server errors.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 1500 * time.Millisecond,
		BackoffFactor:  2,
		RetryStatuses: map[int]struct{}{
			http.StatusTooManyRequests:     {},
			http.StatusInternalServerError: {},
			http.StatusBadGateway:          {},
			http.StatusServiceUnavailable:  {},
			http.StatusGatewayTimeout:      {},
		},
	}
}

func (p RetryPolicy) retryable(status int) bool {
	_, ok := p.RetryStatuses[status]
	return ok
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * p.BackoffFactor)
	}
	return d
}

// Client issues GET requests with a politeness delay before every call and
// a browser identity string on every request.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	policy  RetryPolicy
	log     *slog.Logger
}

// NewClient builds a client that waits at least delay between requests.
func NewClient(delay time.Duration, policy RetryPolicy, log *slog.Logger) *Client {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	if delay <= 0 {
		delay = time.Millisecond
	}
	return &Client{
		http:    &http.Client{Timeout: 20 * time.Second},
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		policy:  policy,
		log:     log,
	}
}

// Get fetches url and returns the body. Transient failures (connection
// errors, 429/5xx) are retried per the policy; any other status fails
// immediately. On exhaustion the error wraps ErrUnavailable.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.policy.backoff(attempt-1)); err != nil {
				return "", err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		body, retry, err := c.once(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
		c.debug("retrying fetch", "url", url, "attempt", attempt+1, "error", err)
	}

	return "", fmt.Errorf("GET %s: %v: %w", url, lastErr, ErrUnavailable)
}

func (c *Client) once(ctx context.Context, url string) (body string, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.policy.retryable(resp.StatusCode), fmt.Errorf("status %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("read body: %w", err)
	}
	return string(raw), false, nil
}

// IsJSShell reports whether html carries no usable server-rendered content:
// very little visible text plus a loading/no-script marker.
func IsJSShell(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	text := strings.TrimSpace(doc.Text())
	if len(text) >= jsShellTextThreshold {
		return false
	}
	return strings.Contains(html, "Loading") || strings.Contains(strings.ToLower(html), "noscript")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) debug(msg string, args ...any) {
	if c.log != nil {
		c.log.Debug(msg, args...)
	}
}
