// Package prom exports list engine signals as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/mediawindow/cache"
	"github.com/IvanBrykalov/mediawindow/pager"
	"github.com/IvanBrykalov/mediawindow/preload"
)

// Adapter implements cache.Metrics, pager.Metrics and preload.Metrics.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	evicts  *prometheus.CounterVec
	size    prometheus.Gauge
	fetches prometheus.Counter
	failed  prometheus.Counter
	items   prometheus.Counter
	stale   prometheus.Counter
	issued  prometheus.Counter
	dropped *prometheus.CounterVec
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns:           Prometheus namespace; subsystems are cache, pager and preload
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(sub, name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:   counter("cache", "hits_total", "Item cache hits"),
		misses: counter("cache", "misses_total", "Item cache misses"),
		evicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "cache", Name: "evictions_total",
			Help: "Item cache evictions by reason", ConstLabels: constLabels,
		}, []string{"reason"}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "cache", Name: "size_entries",
			Help: "Number of cached items", ConstLabels: constLabels,
		}),
		fetches: counter("pager", "fetches_total", "Page fetches started"),
		failed:  counter("pager", "fetch_failures_total", "Page fetches that failed"),
		items:   counter("pager", "items_appended_total", "Items appended to lists"),
		stale:   counter("pager", "stale_results_total", "Fetch results discarded after reset or close"),
		issued:  counter("preload", "issued_total", "Asset warm requests issued"),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "preload", Name: "dropped_total",
			Help: "Asset warm requests dropped by reason", ConstLabels: constLabels,
		}, []string{"reason"}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.size,
		a.fetches, a.failed, a.items, a.stale, a.issued, a.dropped)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) { a.evicts.WithLabelValues(r.String()).Inc() }

// Size updates the cached item gauge.
func (a *Adapter) Size(entries int) { a.size.Set(float64(entries)) }

func (a *Adapter) FetchStarted()       { a.fetches.Inc() }
func (a *Adapter) FetchFailed()        { a.failed.Inc() }
func (a *Adapter) ItemsAppended(n int) { a.items.Add(float64(n)) }
func (a *Adapter) StaleDiscarded()     { a.stale.Inc() }

func (a *Adapter) PreloadIssued()          { a.issued.Inc() }
func (a *Adapter) PreloadDropped(r string) { a.dropped.WithLabelValues(r).Inc() }

// Compile-time checks.
var (
	_ cache.Metrics   = (*Adapter)(nil)
	_ pager.Metrics   = (*Adapter)(nil)
	_ preload.Metrics = (*Adapter)(nil)
)
