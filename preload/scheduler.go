// Package preload warms asset caches for items that are about to be shown.
//
// Warm requests are fire-and-forget: the scheduler never waits for them,
// never retries and never cancels one it has issued. When it cannot issue a
// request right away (same URL already in flight, concurrency budget used
// up, rate limit reached) the request is dropped.
package preload

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/IvanBrykalov/mediawindow/internal/singleflight"
	"github.com/IvanBrykalov/mediawindow/media"
)

// Defaults applied by New.
const (
	DefaultThreshold   = 50
	DefaultMaxInFlight = 8
	DefaultTimeout     = 10 * time.Second
)

// Options configures a Scheduler. Zero values take defaults.
type Options struct {
	// Threshold is how many leading items of the visible set are warmed.
	Threshold int
	// MaxInFlight bounds concurrent warm requests.
	MaxInFlight int
	// Timeout bounds a single warm request.
	Timeout time.Duration
	// Limiter optionally rate limits issued requests (nil = unlimited).
	Limiter *rate.Limiter

	Metrics Metrics
	Logger  *zerolog.Logger
}

// Scheduler issues warm requests whenever the visible set changes.
type Scheduler struct {
	w   Warmer
	opt Options
	log zerolog.Logger

	eg      errgroup.Group
	flights singleflight.Group[string]

	mu     sync.Mutex
	last   []media.Key
	closed bool
}

// New returns a scheduler backed by w.
func New(w Warmer, opt Options) *Scheduler {
	if opt.Threshold <= 0 {
		opt.Threshold = DefaultThreshold
	}
	if opt.MaxInFlight <= 0 {
		opt.MaxInFlight = DefaultMaxInFlight
	}
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultTimeout
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	log := zerolog.Nop()
	if opt.Logger != nil {
		log = opt.Logger.With().Str("component", "preload").Logger()
	}
	s := &Scheduler{w: w, opt: opt, log: log}
	s.eg.SetLimit(opt.MaxInFlight)
	return s
}

// Update reports the current visible items. If the set differs from the
// previous call, the asset URLs of its first Threshold items are warmed.
// It returns the number of requests issued.
func (s *Scheduler) Update(visible []media.Item) int {
	s.mu.Lock()
	if s.closed || sameKeys(s.last, visible) {
		s.mu.Unlock()
		return 0
	}
	s.last = media.Keys(visible)
	s.mu.Unlock()

	head := visible
	if len(head) > s.opt.Threshold {
		head = head[:s.opt.Threshold]
	}

	issued := 0
	for _, it := range head {
		if it.AssetURL == "" {
			continue
		}
		if s.issue(it.AssetURL) {
			issued++
		}
	}
	return issued
}

// Close stops issuing new requests. Requests already issued run to completion.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Wait blocks until every issued request has finished.
func (s *Scheduler) Wait() { _ = s.eg.Wait() }

// issue reserves url before the worker starts, so a duplicate URL in the
// same update is dropped as in flight instead of being counted twice.
func (s *Scheduler) issue(url string) bool {
	release, ok := s.flights.TryAcquire(url)
	if !ok {
		s.opt.Metrics.PreloadDropped(DropInFlight)
		return false
	}
	if s.opt.Limiter != nil && !s.opt.Limiter.Allow() {
		release()
		s.opt.Metrics.PreloadDropped(DropRate)
		return false
	}
	ok = s.eg.TryGo(func() error {
		defer release()
		s.warm(url)
		return nil
	})
	if !ok {
		release()
		s.opt.Metrics.PreloadDropped(DropSaturated)
		return false
	}
	s.opt.Metrics.PreloadIssued()
	return true
}

func (s *Scheduler) warm(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opt.Timeout)
	defer cancel()
	if err := s.w.Warm(ctx, url); err != nil {
		s.log.Debug().Err(err).Str("url", url).Msg("warm failed")
	}
}

func sameKeys(last []media.Key, items []media.Item) bool {
	if last == nil || len(last) != len(items) {
		return false
	}
	for i, it := range items {
		if last[i] != it.Key() {
			return false
		}
	}
	return true
}
