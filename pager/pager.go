// Package pager owns the append-only item sequence of a paginated list and
// the guarded load-more operation that grows it.
//
// The controller is a two-state machine (idle, loading). LoadMore moves it
// to loading only when the list may still grow; a completion moves it back
// to idle. Completions that belong to a superseded generation (after Reset
// or Dispose) are discarded without touching state.
package pager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/IvanBrykalov/mediawindow/media"
)

// Default pagination settings.
const (
	DefaultPageSize = 20
	DefaultMaxPages = 50
)

// ErrFetchPanic wraps a panic raised by a Fetcher.
var ErrFetchPanic = errors.New("pager: fetcher panicked")

// State is a point-in-time copy of the controller state.
type State struct {
	// Items aliases the controller's sequence; do not modify or append.
	Items   []media.Item
	Loading bool
	HasMore bool
	// Err is the message of the last failed fetch ("" if none).
	Err string
	// Page is the number of pages appended so far.
	Page int
}

// Options configures a Controller. Zero values take defaults.
type Options struct {
	// PageSize is passed to the Fetcher (default 20).
	PageSize int
	// MaxPages caps how many pages are fetched (default 50, < 0 = unlimited).
	MaxPages int
	// Sink receives every appended batch (e.g. the item cache).
	Sink Sink
	// OnChange is called after every applied transition, outside the lock.
	OnChange func(State)

	Metrics Metrics
	Logger  *zerolog.Logger
}

// Controller implements guarded pagination over a Fetcher.
// All methods are safe for concurrent use.
type Controller struct {
	fetch Fetcher
	opt   Options
	log   zerolog.Logger

	// ---- guarded by mu ----
	mu       sync.Mutex
	items    []media.Item
	loading  bool
	hasMore  bool
	disposed bool
	err      string
	page     int
	gen      uint64             // bumped by Reset/Dispose
	cancel   context.CancelFunc // cancels the in-flight fetch
}

// New builds a controller in the idle state with HasMore = true.
func New(f Fetcher, opt Options) *Controller {
	if opt.PageSize <= 0 {
		opt.PageSize = DefaultPageSize
	}
	if opt.MaxPages == 0 {
		opt.MaxPages = DefaultMaxPages
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	log := zerolog.Nop()
	if opt.Logger != nil {
		log = opt.Logger.With().Str("component", "pager").Logger()
	}
	return &Controller{
		fetch:   f,
		opt:     opt,
		log:     log,
		hasMore: true,
	}
}

// LoadMore fetches the next page if the controller is idle, the list may
// still grow and MaxPages is not reached. Otherwise it is a no-op.
// It blocks for the duration of the fetch and reports whether a fetch ran.
func (c *Controller) LoadMore(ctx context.Context) bool {
	c.mu.Lock()
	if !c.canLoadLocked() {
		c.mu.Unlock()
		return false
	}
	fctx, cancel := context.WithCancel(ctx)
	c.loading = true
	c.err = ""
	c.cancel = cancel
	gen, page := c.gen, c.page+1
	started := c.stateLocked()
	c.mu.Unlock()

	c.opt.Metrics.FetchStarted()
	c.log.Debug().Int("page", page).Int("page_size", c.opt.PageSize).Msg("fetch started")
	c.notify(started)

	res, err := c.safeFetch(fctx, page)
	cancel()
	c.complete(gen, page, res, err)
	return true
}

// Reset starts the list over: items are cleared, HasMore is true again and
// the error is dropped. An in-flight fetch is cancelled and its result is
// discarded; the controller stays loading until that call returns, so at
// most one fetch is ever outstanding.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.gen++
	if c.cancel != nil {
		c.cancel()
	}
	c.items = nil
	c.hasMore = true
	c.err = ""
	c.page = 0
	st := c.stateLocked()
	c.mu.Unlock()

	c.log.Debug().Msg("reset")
	c.notify(st)
}

// Dispose stops the controller: every later LoadMore is a no-op and an
// in-flight result is dropped. Dispose is idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Status reports whether a load is in flight and whether the list may
// still grow. A page cap does not clear hasMore; see CanLoad.
func (c *Controller) Status() (loading, hasMore bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading, c.hasMore && !c.disposed
}

// CanLoad reports whether LoadMore would start a fetch right now.
func (c *Controller) CanLoad() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canLoadLocked()
}

// ---- internals ----

func (c *Controller) canLoadLocked() bool {
	if c.disposed || c.loading || !c.hasMore {
		return false
	}
	return c.opt.MaxPages < 0 || c.page < c.opt.MaxPages
}

func (c *Controller) complete(gen uint64, page int, res Page, err error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		c.opt.Metrics.StaleDiscarded()
		c.log.Debug().Int("page", page).Msg("result discarded after dispose")
		return
	}
	c.loading = false
	c.cancel = nil
	if gen != c.gen {
		st := c.stateLocked()
		c.mu.Unlock()
		c.opt.Metrics.StaleDiscarded()
		c.log.Debug().Int("page", page).Msg("stale result discarded")
		c.notify(st)
		return
	}

	var appended []media.Item
	switch {
	case err != nil:
		c.err = err.Error()
	case len(res.Items) == 0:
		c.hasMore = false
	default:
		appended = res.Items
		c.items = append(c.items, res.Items...)
		c.page = page
		c.hasMore = res.HasMore
	}
	st := c.stateLocked()
	c.mu.Unlock()

	switch {
	case err != nil:
		c.opt.Metrics.FetchFailed()
		c.log.Warn().Err(err).Int("page", page).Msg("fetch failed")
	case appended != nil:
		if c.opt.Sink != nil {
			c.opt.Sink.Put(appended)
		}
		c.opt.Metrics.ItemsAppended(len(appended))
		c.log.Debug().Int("page", page).Int("items", len(appended)).
			Int("total", len(st.Items)).Bool("has_more", st.HasMore).Msg("page appended")
	default:
		c.log.Debug().Int("page", page).Msg("source exhausted")
	}
	c.notify(st)
}

// safeFetch turns a Fetcher panic into an error so it cannot wedge the
// controller in the loading state.
func (c *Controller) safeFetch(ctx context.Context, page int) (res Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFetchPanic, r)
		}
	}()
	return c.fetch.Fetch(ctx, page, c.opt.PageSize)
}

func (c *Controller) stateLocked() State {
	return State{
		Items:   c.items[:len(c.items):len(c.items)],
		Loading: c.loading,
		HasMore: c.hasMore,
		Err:     c.err,
		Page:    c.page,
	}
}

func (c *Controller) notify(st State) {
	if cb := c.opt.OnChange; cb != nil {
		cb(st)
	}
}
