package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"clearfashion/internal/catalog"
	applog "clearfashion/internal/log"
	"clearfashion/pkg/cache"
	"clearfashion/pkg/retry"
)

const maxBodySize = 8 << 20

var (
	// ErrUnsuccessful is returned when the envelope's success flag is not true.
	ErrUnsuccessful = errors.New("source: unsuccessful response")
	ErrMalformed    = errors.New("source: malformed response")
)

// transientError marks failures worth another attempt (transport, 5xx, 429).
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// Page is one page of the product source.
type Page struct {
	Products   []catalog.Product  `json:"result"`
	Pagination catalog.Pagination `json:"meta"`
}

// PageCache keeps fetched pages; *cache.RedisCache satisfies it.
type PageCache interface {
	Load(ctx context.Context, key string, dst any) (bool, error)
	Store(ctx context.Context, key string, v any) error
}

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   retry.Policy
	cache   PageCache
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithTimeout bounds each request attempt; zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second; zero or less disables it.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func WithRetry(attempts int, backoff retry.Backoff) Option {
	return func(c *Client) {
		c.retry.Attempts = attempts
		c.retry.Backoff = backoff
	}
}

// WithCache enables page caching. A nil or unavailable redis cache is ignored.
func WithCache(pc PageCache) Option {
	return func(c *Client) {
		if rc, ok := pc.(*cache.RedisCache); ok && !rc.IsAvailable() {
			return
		}
		c.cache = pc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		retry: retry.Policy{
			Attempts: 3,
			Backoff:  retry.Exponential(100 * time.Millisecond),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.retry.Retryable = isTransient
	return c
}

func (c *Client) pageURL(page, size int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch requests one page, served from the cache when present. Transient
// failures are retried; an unsuccessful envelope is not.
func (c *Client) Fetch(ctx context.Context, page, size int) (Page, error) {
	return c.fetch(ctx, page, size, true)
}

// Refresh is Fetch without the cache lookup; the fresh page replaces the
// cached copy.
func (c *Client) Refresh(ctx context.Context, page, size int) (Page, error) {
	return c.fetch(ctx, page, size, false)
}

func (c *Client) fetch(ctx context.Context, page, size int, useCache bool) (Page, error) {
	const op = "source.Fetch"

	key := cache.PageKey(page, size)
	if c.cache != nil && useCache {
		var cached Page
		ok, err := c.cache.Load(ctx, key, &cached)
		if err != nil {
			applog.Error(nil, "source.cache.load.fail", err, map[string]any{"key": key})
		}
		if ok {
			return cached, nil
		}
	}

	p, err := retry.Call(ctx, c.retry, func() (Page, error) {
		return c.fetchOnce(ctx, page, size)
	})
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", op, err)
	}

	if c.cache != nil {
		if err := c.cache.Store(ctx, key, p); err != nil {
			applog.Error(nil, "source.cache.store.fail", err, map[string]any{"key": key})
		}
	}
	return p, nil
}

func (c *Client) fetchOnce(ctx context.Context, page, size int) (Page, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Page{}, err
		}
	}
	u, err := c.pageURL(page, size)
	if err != nil {
		return Page{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, transientError{err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Page{}, transientError{err}
	}
	applog.Info(nil, "source.fetch", map[string]any{
		"page": page, "size": size, "status": resp.StatusCode, "latency_ms": time.Since(start).Milliseconds(),
	})

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return Page{}, transientError{fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode >= 300:
		return Page{}, fmt.Errorf("%w: status %d", ErrUnsuccessful, resp.StatusCode)
	}
	return decodePage(body)
}

func decodePage(body []byte) (Page, error) {
	if !gjson.ValidBytes(body) {
		return Page{}, ErrMalformed
	}
	if gjson.GetBytes(body, "success").Type != gjson.True {
		return Page{}, ErrUnsuccessful
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return Page{}, fmt.Errorf("%w: missing data", ErrMalformed)
	}
	var p Page
	if err := json.Unmarshal([]byte(data.Raw), &p); err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if p.Products == nil {
		p.Products = []catalog.Product{}
	}
	p.Pagination = p.Pagination.Normalize()
	return p, nil
}

// FetchOrKeep fetches a page and falls back to prev when the source fails.
// The boolean reports whether the returned page is fresh.
func (c *Client) FetchOrKeep(ctx context.Context, page, size int, prev Page) (Page, bool) {
	p, err := c.Fetch(ctx, page, size)
	return orKeep(p, err, prev, page, size)
}

// RefreshOrKeep is FetchOrKeep bypassing the cache.
func (c *Client) RefreshOrKeep(ctx context.Context, page, size int, prev Page) (Page, bool) {
	p, err := c.Refresh(ctx, page, size)
	return orKeep(p, err, prev, page, size)
}

func orKeep(p Page, err error, prev Page, page, size int) (Page, bool) {
	if err != nil {
		applog.Error(nil, "source.fetch.fail", err, map[string]any{"page": page, "size": size})
		return prev, false
	}
	return p, true
}
