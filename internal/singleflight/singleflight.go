// Package singleflight suppresses duplicate concurrent work per key.
package singleflight

import "sync"

// Group tracks in-flight calls by key so the same work is never running
// twice at once. Unlike a classic singleflight, followers do not wait for
// the leader's result: work here is best-effort and nobody consumes it.
//
// The zero value is ready to use.
type Group[K comparable] struct {
	mu sync.Mutex
	m  map[K]struct{}
}

// TryDo runs fn unless a call for key is already in flight.
// It reports whether fn ran. fn executes in the caller's goroutine,
// outside the group lock.
func (g *Group[K]) TryDo(key K, fn func()) bool {
	release, ok := g.TryAcquire(key)
	if !ok {
		return false
	}
	defer release()
	fn()
	return true
}

// TryAcquire marks key in flight unless it already is. The caller owns
// the key until it calls release, which may run on another goroutine and
// is safe to call more than once.
func (g *Group[K]) TryAcquire(key K) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.m == nil {
		g.m = make(map[K]struct{})
	}
	if _, busy := g.m[key]; busy {
		return nil, false
	}
	g.m[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.m, key)
			g.mu.Unlock()
		})
	}, true
}

// InFlight reports whether a call for key is currently running.
func (g *Group[K]) InFlight(key K) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.m[key]
	return ok
}

// Len returns the number of keys in flight.
func (g *Group[K]) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
