package preload

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Warmer primes a cache for one asset URL.
type Warmer interface {
	Warm(ctx context.Context, url string) error
}

// WarmerFunc adapts a function to Warmer.
type WarmerFunc func(ctx context.Context, url string) error

// Warm implements Warmer.
func (f WarmerFunc) Warm(ctx context.Context, url string) error { return f(ctx, url) }

// HTTPWarmer warms an HTTP cache (CDN, caching proxy) by fetching the asset
// and discarding the body.
type HTTPWarmer struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPWarmer returns a warmer with its own client and timeout.
func NewHTTPWarmer(timeout time.Duration) *HTTPWarmer {
	return &HTTPWarmer{Client: &http.Client{Timeout: timeout}}
}

// Warm implements Warmer.
func (w *HTTPWarmer) Warm(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("preload: build request: %w", err)
	}
	if w.UserAgent != "" {
		req.Header.Set("User-Agent", w.UserAgent)
	}
	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("preload: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("preload: %s: unexpected status %d", url, resp.StatusCode)
	}
	return nil
}
