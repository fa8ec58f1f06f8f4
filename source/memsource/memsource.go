// Package memsource serves a synthetic media catalog from memory.
// It backs the list simulator and tests that need a realistic source
// without a network.
package memsource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IvanBrykalov/mediawindow/media"
	"github.com/IvanBrykalov/mediawindow/pager"
)

// Catalog is a deterministic list of Size items.
type Catalog struct {
	// Size is the number of items in the catalog.
	Size int
	// MediaTypes are assigned round-robin (default: movie, tv).
	MediaTypes []string
	// AssetBaseURL prefixes generated asset URLs ("" = no assets).
	AssetBaseURL string
	// Latency delays every fetch; the delay honours ctx.
	Latency time.Duration
}

// Item returns the i-th catalog item.
func (c Catalog) Item(i int) media.Item {
	types := c.MediaTypes
	if len(types) == 0 {
		types = []string{"movie", "tv"}
	}
	mt := types[i%len(types)]
	id := media.IntID(int64(i + 1))
	it := media.Item{
		MediaType: mt,
		ID:        id,
		Title:     fmt.Sprintf("%s #%s", mt, id),
	}
	if c.AssetBaseURL != "" {
		it.AssetURL = fmt.Sprintf("%s/%s/%s.jpg", c.AssetBaseURL, mt, id)
	}
	return it
}

// Fetch implements pager.Fetcher in pull mode.
func (c Catalog) Fetch(ctx context.Context, page, pageSize int) (pager.Page, error) {
	if err := c.wait(ctx); err != nil {
		return pager.Page{}, err
	}
	from := (page - 1) * pageSize
	if page < 1 || pageSize <= 0 || from >= c.Size {
		return pager.Page{}, nil
	}
	to := min(from+pageSize, c.Size)
	return pager.Page{Items: c.slice(from, to), HasMore: to < c.Size}, nil
}

// Feed returns a push-mode source handing out batch items per call.
// The returned function is safe for concurrent use.
func (c Catalog) Feed(batch int) pager.PushFunc {
	if batch <= 0 {
		batch = pager.DefaultPageSize
	}
	var (
		mu   sync.Mutex
		next int
	)
	return func(ctx context.Context) ([]media.Item, error) {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		mu.Lock()
		defer mu.Unlock()
		if next >= c.Size {
			return nil, nil
		}
		to := min(next+batch, c.Size)
		out := c.slice(next, to)
		next = to
		return out, nil
	}
}

func (c Catalog) slice(from, to int) []media.Item {
	out := make([]media.Item, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, c.Item(i))
	}
	return out
}

func (c Catalog) wait(ctx context.Context) error {
	if c.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ pager.Fetcher = Catalog{}
