package cache

// node is an intrusive doubly linked list element owned by the cache.
type node[K comparable, V any] struct {
	key K
	val V

	// Intrusive list links: head is the oldest entry, tail the newest.
	prev *node[K, V]
	next *node[K, V]
}

// Key returns the node key (part of policy.Node interface).
func (n *node[K, V]) Key() K { return n.key }

// Value returns a pointer to the stored value (part of policy.Node interface).
// NOTE: callers must only read/write through this pointer while holding the
// cache lock; otherwise data races may occur.
func (n *node[K, V]) Value() *V { return &n.val }
