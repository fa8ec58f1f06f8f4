// Package window computes which slice of a uniformly sized list must be
// rendered for a given scroll position (list virtualization).
//
// Compute is a pure function: it neither owns the items nor the viewport.
// The caller reports the viewport and the item count and receives an index
// range plus the pixel geometry needed to position the rendered slice.
package window

import "math"

// Viewport is the scroll container as seen by the rendering layer.
type Viewport struct {
	ScrollOffset    float64
	ContainerHeight float64
}

// Config tunes the calculation.
type Config struct {
	// ItemHeight is the uniform row height in pixels. Values <= 0 disable
	// virtualization (every item is rendered).
	ItemHeight float64
	// Overscan is the number of extra rows rendered on each side.
	Overscan int
	// Disabled renders the whole list regardless of the viewport.
	Disabled bool
}

// State is the derived window. Items[Start:End] must be rendered, shifted
// down by OffsetY inside a spacer of TotalHeight.
type State struct {
	// Start is the first rendered index (overscan included).
	Start int
	// End is one past the last rendered index.
	End int
	// First is the first index intersecting the viewport, without overscan.
	First int

	OffsetY     float64
	TotalHeight float64
	ItemHeight  float64
}

// Compute maps a viewport and item count onto the rendered index range.
// Inputs are clamped; Compute never panics.
func Compute(vp Viewport, cfg Config, total int) State {
	if total < 0 {
		total = 0
	}
	ih := cfg.ItemHeight
	if cfg.Disabled || ih <= 0 || math.IsNaN(ih) || math.IsInf(ih, 0) {
		s := State{End: total}
		if ih > 0 && !math.IsInf(ih, 0) {
			s.ItemHeight = ih
			s.TotalHeight = float64(total) * ih
		}
		return s
	}

	scroll := clampNonNeg(vp.ScrollOffset)
	height := clampNonNeg(vp.ContainerHeight)
	overscan := cfg.Overscan
	if overscan < 0 {
		overscan = 0
	}
	if overscan > total {
		overscan = total
	}

	rawStart := clampIndex(math.Floor(scroll/ih), total)
	perView := clampIndex(math.Ceil(height/ih), total)
	rawEnd := rawStart + perView + overscan
	if rawEnd > total {
		rawEnd = total
	}
	start := rawStart - overscan
	if start < 0 {
		start = 0
	}

	first := rawStart
	if first >= total {
		first = max(total-1, 0)
	}

	return State{
		Start:       start,
		End:         rawEnd,
		First:       first,
		OffsetY:     float64(start) * ih,
		TotalHeight: float64(total) * ih,
		ItemHeight:  ih,
	}
}

// Len is the number of rendered items.
func (s State) Len() int { return s.End - s.Start }

// Equal reports whether two windows render the same range.
func (s State) Equal(o State) bool { return s.Start == o.Start && s.End == o.End }

// SentinelY is the pixel position of the load-more sentinel: thresholdPx
// above the bottom edge of the rendered slice.
func (s State) SentinelY(thresholdPx float64) float64 {
	bottom := s.OffsetY + float64(s.Len())*s.ItemHeight
	return bottom - clampNonNeg(thresholdPx)
}

// Slice returns items[s.Start:s.End], clamped to len(items).
// The result aliases items; callers must not append to it.
func Slice[T any](items []T, s State) []T {
	lo, hi := s.Start, s.End
	if hi > len(items) {
		hi = len(items)
	}
	if lo < 0 {
		lo = 0
	}
	if lo >= hi {
		return nil
	}
	return items[lo:hi:hi]
}

func clampNonNeg(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// clampIndex converts a non-negative float index into [0, limit].
func clampIndex(v float64, limit int) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= float64(limit) {
		return limit
	}
	return int(v)
}
