// Package policy defines the contract between the bounded cache and its
// eviction/ordering strategies.
package policy

// Node is the minimal contract a cache entry must satisfy for a policy.
// It provides read-only access to the key and a pointer to the value.
type Node[K comparable, V any] interface {
	Key() K
	Value() *V
}

// Hooks expose O(1) operations on the cache's ordered list. The front of
// the list is the next eviction candidate, the back is the newest entry.
//
// Concurrency: all hook calls happen under the cache lock.
// Hooks manage only the list; the cache owns the key->node map.
type Hooks[K comparable, V any] interface {
	// PushBack appends the node at the newest end (used on admission).
	PushBack(Node[K, V])
	// MoveToBack marks the node as newest.
	MoveToBack(Node[K, V])
	// Remove detaches the node from the list.
	Remove(Node[K, V])
	// Front returns the eviction candidate (or nil if empty).
	Front() Node[K, V]
	// Len returns the number of resident nodes.
	Len() int
}

// ListPolicy is an ordering policy instance bound to list hooks.
// All methods are invoked under the cache lock.
//
// Semantics:
//   - OnAdd places a new node and may return an eviction candidate.
//     The cache evicts that node and calls OnRemove for it.
//   - OnGet/OnUpdate may reorder the node.
//   - OnRemove notifies the policy; the cache performs the deletion.
type ListPolicy[K comparable, V any] interface {
	OnAdd(Node[K, V]) (evict Node[K, V])
	OnGet(Node[K, V])
	OnUpdate(Node[K, V])
	OnRemove(Node[K, V])
}

// Policy is a factory that binds a ListPolicy to a cache's hooks.
type Policy[K comparable, V any] interface {
	New(Hooks[K, V]) ListPolicy[K, V]
}
