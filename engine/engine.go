// Package engine composes the list components behind a single event loop.
//
// One goroutine owns the viewport, the derived window and the cache sweep.
// Scroll, resize, pagination changes and sweep ticks are delivered to it as
// events; each event is applied in one turn, after which a new Snapshot is
// published. Pagination itself runs outside the loop: LoadMore and Reset go
// straight to the controller, whose transitions come back as events.
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/IvanBrykalov/mediawindow/cache"
	"github.com/IvanBrykalov/mediawindow/config"
	"github.com/IvanBrykalov/mediawindow/media"
	"github.com/IvanBrykalov/mediawindow/pager"
	"github.com/IvanBrykalov/mediawindow/preload"
	"github.com/IvanBrykalov/mediawindow/visibility"
	"github.com/IvanBrykalov/mediawindow/window"
)

// ErrNilFetcher is returned by New when no fetcher is given.
var ErrNilFetcher = errors.New("engine: nil fetcher")

// Snapshot is the read state published after every loop turn.
type Snapshot struct {
	// VisibleItems aliases the list; do not modify or append.
	VisibleItems []media.Item
	TotalHeight  float64
	OffsetY      float64
	// StartIndex is the first item intersecting the viewport.
	StartIndex int
	// RenderStart is the index of VisibleItems[0]; it precedes StartIndex
	// by the leading overscan.
	RenderStart int
	IsLoading   bool
	HasMore     bool
	// Error is the message of the last failed fetch ("" if none).
	Error     string
	CacheSize int
	// Total is the number of loaded items.
	Total int
}

type eventKind uint8

const (
	evScroll eventKind = iota
	evResize
	evChanged // pagination state changed, or a plain refresh
	evSweep
)

type event struct {
	kind  eventKind
	value float64
	reply chan int
}

// Engine drives one list (one search, one section).
type Engine struct {
	id   string
	cfg  config.Config
	log  zerolog.Logger
	wcfg window.Config

	cache   *cache.ItemCache
	pager   *pager.Controller
	geom    *visibility.Geometry
	trigger *visibility.Trigger
	preload *preload.Scheduler // nil when preloading is disabled

	ctx    context.Context
	cancel context.CancelFunc
	events chan event
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
	closed atomic.Bool
	snap   atomic.Pointer[Snapshot]

	// manual sweeps that restarted the periodic timer
	timerResets atomic.Int32

	// ---- owned by the loop goroutine ----
	vp      window.Viewport
	state   pager.State
	visible []media.Item
}

// New builds an engine over f and starts its loop. cfg zero fields take
// defaults; degenerate values are rejected with config.ErrInvalid.
// Unless infinite scroll is disabled the first page is requested right away.
func New(cfg config.Config, f pager.Fetcher, opts ...Option) (*Engine, error) {
	e, err := build(cfg, f, opts)
	if err != nil {
		return nil, err
	}
	e.start()
	e.connect()
	return e, nil
}

// NewStatic builds an engine over a fixed item sequence. The sequence is
// loaded before NewStatic returns.
func NewStatic(cfg config.Config, items []media.Item, opts ...Option) (*Engine, error) {
	e, err := build(cfg, pager.Static(items), opts)
	if err != nil {
		return nil, err
	}
	e.start()
	e.pager.LoadMore(e.ctx)
	e.connect()
	return e, nil
}

func build(cfg config.Config, f pager.Fetcher, opts []Option) (*Engine, error) {
	if f == nil {
		return nil, ErrNilFetcher
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{log: zerolog.Nop(), metrics: NoopMetrics{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.warmer == nil {
		o.warmer = preload.NewHTTPWarmer(preload.DefaultTimeout)
	}
	log := o.log.With().Str("engine_id", o.id).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		id:  o.id,
		cfg: cfg,
		log: log,
		wcfg: window.Config{
			ItemHeight: cfg.ItemHeight,
			Overscan:   cfg.OverscanRows(),
			Disabled:   cfg.DisableVirtualization,
		},
		ctx:    ctx,
		cancel: cancel,
		events: make(chan event),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		vp:     window.Viewport{ContainerHeight: cfg.InitialHeight()},
	}

	e.cache = cache.NewItemCache(cache.Options[media.Key, media.Item]{
		Capacity:      cfg.MaxItems,
		Policy:        o.policy,
		SweepInterval: cfg.CleanupInterval,
		Metrics:       o.metrics,
		Clock:         o.clock,
	})
	e.pager = pager.New(f, pager.Options{
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxPages,
		Sink:     e.cache,
		OnChange: func(pager.State) { e.post(evChanged, 0) },
		Metrics:  o.metrics,
		Logger:   &log,
	})
	e.geom = visibility.NewGeometry(cfg.SentinelMargin())
	e.trigger = visibility.NewTrigger(ctx, e.pager, visibility.WithLogger(log))
	if !cfg.DisablePreload {
		e.preload = preload.New(o.warmer, preload.Options{
			Threshold: cfg.PreloadThreshold,
			Limiter:   o.limiter,
			Metrics:   o.metrics,
			Logger:    &log,
		})
	}
	e.snap.Store(&Snapshot{HasMore: true})
	return e, nil
}

func (e *Engine) start() {
	go e.loop()
	e.log.Debug().
		Int("max_items", e.cfg.MaxItems).
		Int("page_size", e.cfg.PageSize).
		Bool("virtualization", !e.cfg.DisableVirtualization).
		Bool("infinite_scroll", !e.cfg.DisableInfiniteScroll).
		Bool("preload", !e.cfg.DisablePreload).
		Msg("engine started")
}

func (e *Engine) connect() {
	if !e.cfg.DisableInfiniteScroll {
		e.trigger.Connect(e.geom)
	}
	e.post(evChanged, 0)
}

// ID returns the engine id.
func (e *Engine) ID() string { return e.id }

// Scroll reports a new scroll offset and returns after the window is recomputed.
func (e *Engine) Scroll(offset float64) { e.post(evScroll, offset) }

// Resize reports a new container height and returns after the window is recomputed.
func (e *Engine) Resize(height float64) { e.post(evResize, height) }

// LoadMore requests the next page unless a load is in flight or the list
// is exhausted. It blocks for the fetch and reports whether one ran.
func (e *Engine) LoadMore(ctx context.Context) bool { return e.pager.LoadMore(ctx) }

// Reset starts the list over for a new identity. Cached items are kept.
func (e *Engine) Reset() { e.pager.Reset() }

// Sweep runs a cache sweep against the current window now, subject to the
// cleanup interval, and returns the number of removed items. A sweep that
// runs restarts the periodic timer, so the next automatic sweep comes one
// full interval later instead of being throttled away.
func (e *Engine) Sweep() int { return e.post(evSweep, 0) }

// SetInfiniteScroll connects (fresh observation) or disconnects the
// load-more trigger.
func (e *Engine) SetInfiniteScroll(on bool) {
	if e.closed.Load() {
		return
	}
	if on {
		e.trigger.Connect(e.geom)
	} else {
		e.trigger.Disconnect()
	}
	e.post(evChanged, 0)
}

// Snapshot returns the most recently published read state.
func (e *Engine) Snapshot() Snapshot { return *e.snap.Load() }

// Visible returns the items to render.
func (e *Engine) Visible() []media.Item { return e.snap.Load().VisibleItems }

// Cached looks an item up in the bounded cache.
func (e *Engine) Cached(k media.Key) (media.Item, bool) { return e.cache.Get(k) }

// Done is closed once the loop has stopped.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Close disconnects the trigger, stops the sweep timer, disposes the
// pagination controller (an in-flight result is dropped) and stops
// preloading. Close is idempotent.
func (e *Engine) Close() error {
	e.once.Do(func() {
		e.closed.Store(true)
		e.trigger.Disconnect()
		e.cancel()
		e.pager.Dispose()
		if e.preload != nil {
			e.preload.Close()
		}
		close(e.quit)
		<-e.done
		_ = e.cache.Close()
		e.log.Debug().Msg("engine closed")
	})
	return nil
}

// ---- loop ----

func (e *Engine) loop() {
	defer close(e.done)

	t := time.NewTicker(e.cfg.CleanupInterval)
	defer t.Stop()

	for {
		select {
		case <-e.quit:
			return
		case <-t.C:
			e.sweep()
		case ev := <-e.events:
			if ev.kind == evSweep {
				n, ran := e.sweep()
				if ran {
					t.Reset(e.cfg.CleanupInterval)
					e.timerResets.Add(1)
				}
				ev.reply <- n
				continue
			}
			ev.reply <- e.handle(ev)
		}
	}
}

// post delivers an event and waits for its turn to finish.
// After Close it returns 0 without blocking.
func (e *Engine) post(kind eventKind, v float64) int {
	ev := event{kind: kind, value: v, reply: make(chan int, 1)}
	select {
	case e.events <- ev:
	case <-e.quit:
		return 0
	}
	select {
	case n := <-ev.reply:
		return n
	case <-e.done:
		return 0
	}
}

func (e *Engine) handle(ev event) int {
	switch ev.kind {
	case evScroll:
		e.vp.ScrollOffset = ev.value
	case evResize:
		e.vp.ContainerHeight = ev.value
	case evChanged:
		// Re-read instead of trusting the callback argument: callbacks
		// from concurrent LoadMore and Reset may arrive out of order.
		e.state = e.pager.State()
	}
	e.recompute()
	return 0
}

func (e *Engine) recompute() {
	win := window.Compute(e.vp, e.wcfg, len(e.state.Items))
	e.visible = window.Slice(e.state.Items, win)
	e.publish(win)

	if e.closed.Load() {
		return
	}
	if e.preload != nil {
		e.preload.Update(e.visible)
	}
	// Notifies the trigger when connected.
	e.geom.Update(e.vp, win)
}

func (e *Engine) sweep() (int, bool) {
	n, ran := e.cache.SweepVisible(media.KeySet(e.visible))
	if !ran {
		return 0, false
	}
	if n > 0 {
		e.log.Debug().Int("removed", n).Int("cache_size", e.cache.Len()).Msg("cache swept")
	}
	s := *e.snap.Load()
	s.CacheSize = e.cache.Len()
	e.snap.Store(&s)
	return n, true
}

func (e *Engine) publish(win window.State) {
	e.snap.Store(&Snapshot{
		VisibleItems: e.visible,
		TotalHeight:  win.TotalHeight,
		OffsetY:      win.OffsetY,
		StartIndex:   win.First,
		RenderStart:  win.Start,
		IsLoading:    e.state.Loading,
		HasMore:      e.state.HasMore,
		Error:        e.state.Err,
		CacheSize:    e.cache.Len(),
		Total:        len(e.state.Items),
	})
}
