// Package lru implements the LRU ordering policy.
package lru

import "github.com/IvanBrykalov/mediawindow/policy"

// lru moves touched entries to the newest end of the list, so the front
// is always the least recently used entry.
type lru[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

type lruPolicy[K comparable, V any] struct{}

// New returns a Policy factory that constructs LRU instances.
func New[K comparable, V any]() policy.Policy[K, V] { return lruPolicy[K, V]{} }

// New implements policy.Policy by binding the cache hooks.
func (lruPolicy[K, V]) New(h policy.Hooks[K, V]) policy.ListPolicy[K, V] {
	return &lru[K, V]{h: h}
}

// OnAdd places the new entry at the newest end. LRU doesn't choose
// evictions itself; the cache trims from the front.
func (p *lru[K, V]) OnAdd(n policy.Node[K, V]) (evict policy.Node[K, V]) {
	p.h.PushBack(n)
	return nil
}

// OnGet marks the entry as most recently used.
func (p *lru[K, V]) OnGet(n policy.Node[K, V]) { p.h.MoveToBack(n) }

// OnUpdate treats an update as recent use.
func (p *lru[K, V]) OnUpdate(n policy.Node[K, V]) { p.h.MoveToBack(n) }

// OnRemove is a no-op for pure LRU.
func (p *lru[K, V]) OnRemove(_ policy.Node[K, V]) {}
