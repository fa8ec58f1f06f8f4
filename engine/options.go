package engine

import (
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/IvanBrykalov/mediawindow/cache"
	"github.com/IvanBrykalov/mediawindow/media"
	"github.com/IvanBrykalov/mediawindow/policy"
	"github.com/IvanBrykalov/mediawindow/preload"
)

type options struct {
	id      string
	log     zerolog.Logger
	metrics Metrics
	warmer  preload.Warmer
	clock   cache.Clock
	policy  policy.Policy[media.Key, media.Item]
	limiter *rate.Limiter
}

// Option customizes an Engine.
type Option func(*options)

// WithLogger attaches a logger; the engine id is added to every line.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.log = l } }

// WithMetrics routes cache, pagination and preload signals to m.
func WithMetrics(m Metrics) Option { return func(o *options) { o.metrics = m } }

// WithWarmer replaces the default HTTP asset warmer.
func WithWarmer(w preload.Warmer) Option { return func(o *options) { o.warmer = w } }

// WithClock sets the time source of the cache sweep interval.
func WithClock(c cache.Clock) Option { return func(o *options) { o.clock = c } }

// WithCachePolicy overrides the insert-once FIFO eviction order.
func WithCachePolicy(p policy.Policy[media.Key, media.Item]) Option {
	return func(o *options) { o.policy = p }
}

// WithPreloadRate caps warm requests to r per second with the given burst.
func WithPreloadRate(r rate.Limit, burst int) Option {
	return func(o *options) { o.limiter = rate.NewLimiter(r, burst) }
}

// WithID sets the engine id used in logs (default: random UUID).
func WithID(id string) Option { return func(o *options) { o.id = id } }
