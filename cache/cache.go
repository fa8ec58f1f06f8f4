package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/mediawindow/policy"
	"github.com/IvanBrykalov/mediawindow/policy/fifo"
)

// cache is a bounded in-memory KV store with a pluggable ordering policy.
// All methods are safe for concurrent use by multiple goroutines.
type cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu        sync.Mutex
	m         map[K]*node[K, V]
	head      *node[K, V] // oldest
	tail      *node[K, V] // newest
	len       int
	lastSweep int64 // UnixNano of the last effective sweep

	pol policy.ListPolicy[K, V]
	opt Options[K, V]

	closed atomic.Bool
}

// New constructs a cache with the provided Options.
// Defaults:
//   - nil Metrics  -> NoopMetrics
//   - nil Policy   -> insert-once FIFO
//
// New panics if Capacity <= 0.
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.Capacity <= 0 {
		panic("Capacity must be > 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = fifo.New[K, V]()
	}

	c := &cache[K, V]{
		m:   make(map[K]*node[K, V], opt.Capacity),
		opt: opt,
	}
	// The sweep interval counts from construction, not from the first call.
	c.lastSweep = c.now()
	c.pol = opt.Policy.New(listHooks[K, V]{c: c})
	return c
}

// Set inserts or updates k→v and trims to capacity.
func (c *cache[K, V]) Set(k K, v V) {
	if c.closed.Load() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.upsertLocked(k, v)
	c.enforceLimitsLocked()
}

// Put upserts entries in order; capacity is enforced once after the batch,
// so the oldest-inserted excess is evicted.
func (c *cache[K, V]) Put(entries ...Entry[K, V]) {
	if c.closed.Load() || len(entries) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range entries {
		c.upsertLocked(e.Key, e.Value)
	}
	c.enforceLimitsLocked()
}

// Get returns the value for k and a presence flag.
func (c *cache[K, V]) Get(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.m[k]
	if !ok {
		c.opt.Metrics.Miss()
		var zero V
		return zero, false
	}
	c.pol.OnGet(n)
	c.opt.Metrics.Hit()
	return n.val, true
}

// Remove deletes k if present and returns true on success.
// Explicit removals are not counted as evictions.
func (c *cache[K, V]) Remove(k K) bool {
	if c.closed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.m[k]
	if !ok {
		return false
	}
	c.pol.OnRemove(n)
	c.unlink(n)
	delete(c.m, k)
	c.opt.Metrics.Size(c.len)
	return true
}

// Len returns the number of resident entries.
func (c *cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.len
}

// Keys returns resident keys from the oldest to the newest.
func (c *cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]K, 0, c.len)
	for n := c.head; n != nil; n = n.next {
		out = append(out, n.key)
	}
	return out
}

// Sweep drops every entry not kept, at most once per SweepInterval.
func (c *cache[K, V]) Sweep(keep func(K) bool) (removed int, ran bool) {
	if c.closed.Load() {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if iv := c.opt.SweepInterval; iv > 0 && now-c.lastSweep < int64(iv) {
		return 0, false
	}
	c.lastSweep = now

	for n := c.head; n != nil; {
		next := n.next
		if keep == nil || !keep(n.key) {
			c.evictNode(n, EvictSweep)
			removed++
		}
		n = next
	}
	c.opt.Metrics.Size(c.len)
	return removed, true
}

// Close marks the cache as closed. Future operations are ignored.
func (c *cache[K, V]) Close() error {
	c.closed.Store(true)
	return nil
}

// ---- helpers (mu held) ----

func (c *cache[K, V]) upsertLocked(k K, v V) {
	if n, ok := c.m[k]; ok {
		n.val = v
		c.pol.OnUpdate(n)
		return
	}
	n := &node[K, V]{key: k, val: v}
	c.m[k] = n
	if ev := c.pol.OnAdd(n); ev != nil {
		c.evictNode(ev.(*node[K, V]), EvictPolicy)
	}
}

// enforceLimitsLocked evicts from the front until the count limit holds.
func (c *cache[K, V]) enforceLimitsLocked() {
	for c.len > c.opt.Capacity {
		front := c.head
		if front == nil {
			break
		}
		c.evictNode(front, EvictCapacity)
	}
	c.opt.Metrics.Size(c.len)
}

// evictNode removes the node, updates metrics, and calls OnEvict.
func (c *cache[K, V]) evictNode(n *node[K, V], reason EvictReason) {
	c.pol.OnRemove(n)
	c.unlink(n)
	delete(c.m, n.key)
	c.opt.Metrics.Evict(reason)
	if cb := c.opt.OnEvict; cb != nil {
		cb(n.key, n.val, reason)
	}
}

func (c *cache[K, V]) now() int64 {
	if c.opt.Clock != nil {
		return c.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}
