package visibility

import (
	"sync"

	"github.com/IvanBrykalov/mediawindow/window"
)

// Signal is an intersection-style visibility source for the sentinel.
// Subscribe registers fn and returns a function that removes it.
type Signal interface {
	Subscribe(fn func(intersecting bool)) (unsubscribe func())
}

// Intersecting reports whether the sentinel, placed thresholdPx above the
// bottom of the rendered window, lies inside the viewport.
func Intersecting(vp window.Viewport, w window.State, thresholdPx float64) bool {
	return w.SentinelY(thresholdPx) <= vp.ScrollOffset+vp.ContainerHeight
}

// Geometry is a Signal computed from the viewport and window state rather
// than from a DOM observer. Update notifies every subscriber.
type Geometry struct {
	threshold float64

	mu   sync.Mutex
	subs map[uint64]func(bool)
	next uint64
	last bool
}

// NewGeometry returns a geometry signal with the given pre-trigger margin.
func NewGeometry(thresholdPx float64) *Geometry {
	return &Geometry{threshold: thresholdPx, subs: make(map[uint64]func(bool))}
}

// Subscribe implements Signal.
func (g *Geometry) Subscribe(fn func(bool)) func() {
	g.mu.Lock()
	id := g.next
	g.next++
	g.subs[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.subs, id)
			g.mu.Unlock()
		})
	}
}

// Update recomputes the intersection and notifies subscribers.
// Callbacks run outside the lock in the caller's goroutine.
func (g *Geometry) Update(vp window.Viewport, w window.State) bool {
	in := Intersecting(vp, w, g.threshold)

	g.mu.Lock()
	g.last = in
	fns := make([]func(bool), 0, len(g.subs))
	for _, fn := range g.subs {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(in)
	}
	return in
}

// Last returns the most recent intersection result.
func (g *Geometry) Last() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Subscribers returns the number of live subscriptions.
func (g *Geometry) Subscribers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}
