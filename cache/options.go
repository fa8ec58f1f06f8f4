package cache

import (
	"time"

	"github.com/IvanBrykalov/mediawindow/policy"
)

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictPolicy: proposed by the active policy on admission.
	EvictPolicy EvictReason = iota
	// EvictCapacity: removed to satisfy the entry limit.
	EvictCapacity
	// EvictSweep: dropped by a periodic sweep because it was not kept.
	EvictSweep
)

// String returns a stable label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictSweep:
		return "sweep"
	default:
		return "policy"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures the cache behavior. Zero values are safe;
// defaults are applied in New():
//   - nil Policy   => insert-once FIFO
//   - nil Metrics  => NoopMetrics
//   - nil Clock    => time.Now()
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit. Must be > 0.
	Capacity int

	// Policy orders entries for eviction; nil => fifo.
	Policy policy.Policy[K, V]

	// SweepInterval is the minimum time between two effective sweeps
	// (0 = every Sweep call runs).
	SweepInterval time.Duration

	// OnEvict is called on eviction under the cache lock; keep callbacks lightweight.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics

	// Clock allows overriding time source (tests). Nil => time.Now().
	Clock Clock
}
