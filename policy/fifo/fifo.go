// Package fifo implements insert-once FIFO ordering: entries are evicted in
// the order they were first admitted. Neither reads nor updates reorder.
package fifo

import "github.com/IvanBrykalov/mediawindow/policy"

type fifo[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

type fifoPolicy[K comparable, V any] struct{}

// New returns a Policy factory for insert-once FIFO ordering.
func New[K comparable, V any]() policy.Policy[K, V] { return fifoPolicy[K, V]{} }

// New implements policy.Policy.
func (fifoPolicy[K, V]) New(h policy.Hooks[K, V]) policy.ListPolicy[K, V] {
	return &fifo[K, V]{h: h}
}

// OnAdd appends the entry at the newest end. Capacity is enforced by the cache.
func (p *fifo[K, V]) OnAdd(n policy.Node[K, V]) (evict policy.Node[K, V]) {
	p.h.PushBack(n)
	return nil
}

// OnGet keeps insertion order.
func (p *fifo[K, V]) OnGet(policy.Node[K, V]) {}

// OnUpdate keeps insertion order: re-inserting a key does not refresh it.
func (p *fifo[K, V]) OnUpdate(policy.Node[K, V]) {}

func (p *fifo[K, V]) OnRemove(policy.Node[K, V]) {}
