package pager

import (
	"context"

	"github.com/IvanBrykalov/mediawindow/media"
)

// Page is one batch returned by a Fetcher.
type Page struct {
	Items []media.Item
	// HasMore is false when the source knows this is the last page.
	HasMore bool
}

// Fetcher retrieves a page of items. page is 1-based.
// Implementations own their timeouts; ctx is cancelled when the result is
// no longer wanted (reset or disposal).
type Fetcher interface {
	Fetch(ctx context.Context, page, pageSize int) (Page, error)
}

// PageFunc adapts a pull-mode function to Fetcher.
type PageFunc func(ctx context.Context, page, pageSize int) (Page, error)

// Fetch implements Fetcher.
func (f PageFunc) Fetch(ctx context.Context, page, pageSize int) (Page, error) {
	return f(ctx, page, pageSize)
}

// PushFunc adapts a push-mode "give me more" function to Fetcher.
// The source is exhausted once it returns no items.
type PushFunc func(ctx context.Context) ([]media.Item, error)

// Fetch implements Fetcher.
func (f PushFunc) Fetch(ctx context.Context, _, _ int) (Page, error) {
	items, err := f(ctx)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, HasMore: len(items) > 0}, nil
}

// Static serves a fixed sequence as a single final page.
func Static(items []media.Item) Fetcher {
	return PageFunc(func(_ context.Context, page, _ int) (Page, error) {
		if page > 1 {
			return Page{}, nil
		}
		return Page{Items: items, HasMore: false}, nil
	})
}

// Sink receives every non-empty batch appended to the list.
type Sink interface {
	Put(items []media.Item)
}
