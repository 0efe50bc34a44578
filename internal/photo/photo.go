package photo

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"clearfashion/internal/catalog"
)

const defaultParallelism = 8

// Checker checks that product photos exist and substitutes a fallback image
// for the ones that do not answer in time.
type Checker struct {
	client      *http.Client
	timeout     time.Duration
	fallback    string
	parallelism int
}

type Option func(*Checker)

func WithHTTPClient(c *http.Client) Option { return func(p *Checker) { p.client = c } }

func WithParallelism(n int) Option {
	return func(p *Checker) {
		if n > 0 {
			p.parallelism = n
		}
	}
}

func New(timeout time.Duration, fallback string, opts ...Option) *Checker {
	p := &Checker{
		client:      &http.Client{},
		timeout:     timeout,
		fallback:    fallback,
		parallelism: defaultParallelism,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Checker) Fallback() string { return p.fallback }

// Resolve returns url when it answers 2xx with an image (or unspecified)
// content type within the timeout, the fallback otherwise.
func (p *Checker) Resolve(ctx context.Context, url string) string {
	if url == "" {
		return p.fallback
	}
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ok, retryGet := p.exists(ctx, http.MethodHead, url)
	if retryGet {
		ok, _ = p.exists(ctx, http.MethodGet, url)
	}
	if !ok {
		return p.fallback
	}
	return url
}

// exists reports whether url serves an image; the second result asks for a
// GET when the server refuses HEAD.
func (p *Checker) exists(ctx context.Context, method, url string) (bool, bool) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return false, false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false, false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))

	if resp.StatusCode == http.StatusMethodNotAllowed && method == http.MethodHead {
		return false, true
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, false
	}
	ct := resp.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "image/"), false
}

// ResolveAll checks every product photo concurrently and returns the
// resolved URL per product UUID.
func (p *Checker) ResolveAll(ctx context.Context, products []catalog.Product) map[string]string {
	out := make(map[string]string, len(products))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for _, prod := range products {
		g.Go(func() error {
			resolved := p.Resolve(gctx, prod.Photo)
			mu.Lock()
			out[prod.UUID] = resolved
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
