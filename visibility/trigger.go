// Package visibility turns a sentinel visibility signal into load-more calls.
package visibility

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Loader is the pagination side of the trigger. *pager.Controller satisfies it.
type Loader interface {
	LoadMore(ctx context.Context) bool
	// CanLoad reports whether LoadMore would fetch: idle, more to come and
	// below any page cap.
	CanLoad() bool
}

// Trigger calls Loader.LoadMore when the sentinel intersects the viewport
// and the loader can start a fetch.
type Trigger struct {
	ctx    context.Context
	loader Loader
	spawn  func(func())
	log    zerolog.Logger

	mu  sync.Mutex
	sub *subscription

	fired atomic.Int64
}

type subscription struct {
	unsubscribe func()
	active      atomic.Bool
}

// Option customizes a Trigger.
type Option func(*Trigger)

// WithSpawn sets how LoadMore is started; the default runs it in a new goroutine.
func WithSpawn(spawn func(func())) Option { return func(t *Trigger) { t.spawn = spawn } }

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Trigger) { t.log = l.With().Str("component", "visibility").Logger() }
}

// NewTrigger builds a disconnected trigger. ctx bounds every LoadMore it starts.
func NewTrigger(ctx context.Context, l Loader, opts ...Option) *Trigger {
	t := &Trigger{
		ctx:    ctx,
		loader: l,
		spawn:  func(fn func()) { go fn() },
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Connect observes sig. A previous observation is torn down first.
func (t *Trigger) Connect(sig Signal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.disconnectLocked()
	s := &subscription{}
	s.active.Store(true)
	s.unsubscribe = sig.Subscribe(func(in bool) {
		if s.active.Load() {
			t.Notify(in)
		}
	})
	t.sub = s
	t.log.Debug().Msg("connected")
}

// Disconnect stops observing. Safe to call when not connected.
func (t *Trigger) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disconnectLocked()
}

// Connected reports whether the trigger currently observes a signal.
func (t *Trigger) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sub != nil
}

// Notify handles one visibility callback and reports whether it started a load.
func (t *Trigger) Notify(intersecting bool) bool {
	if !intersecting || t.ctx.Err() != nil {
		return false
	}
	if !t.loader.CanLoad() {
		return false
	}
	t.fired.Add(1)
	t.log.Debug().Msg("sentinel visible, loading more")
	t.spawn(func() { t.loader.LoadMore(t.ctx) })
	return true
}

// Fired returns how many loads the trigger has started.
func (t *Trigger) Fired() int64 { return t.fired.Load() }

func (t *Trigger) disconnectLocked() {
	if t.sub == nil {
		return
	}
	t.sub.active.Store(false)
	t.sub.unsubscribe()
	t.sub = nil
	t.log.Debug().Msg("disconnected")
}
