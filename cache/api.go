package cache

// Cache is a bounded, insertion-ordered key/value store.
// All methods are safe for concurrent use by multiple goroutines.
//
// Operations are O(1) expected (a map lookup plus constant-time list fixes)
// except Sweep and Keys, which walk the whole list.
type Cache[K comparable, V any] interface {
	// Set inserts or updates k→v. An existing key keeps its place in the
	// eviction order unless the active policy reorders on update.
	Set(k K, v V)

	// Put upserts a batch of entries in order, then trims to Capacity once.
	Put(entries ...Entry[K, V])

	// Get returns the value for k and a boolean flag indicating presence.
	Get(k K) (V, bool)

	// Remove deletes k if present and returns true on success.
	Remove(k K) bool

	// Len returns the number of resident entries.
	Len() int

	// Keys returns the resident keys, next eviction candidate first.
	Keys() []K

	// Sweep removes every entry for which keep returns false and reports
	// the number removed. ran is false (and nothing is removed) when the
	// previous sweep ran less than SweepInterval ago or the cache is closed.
	Sweep(keep func(K) bool) (removed int, ran bool)

	// Close marks the cache closed; later operations are ignored.
	Close() error
}

// Entry is a key/value pair passed to Put.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}
