package engine

import (
	"github.com/IvanBrykalov/mediawindow/cache"
	"github.com/IvanBrykalov/mediawindow/pager"
	"github.com/IvanBrykalov/mediawindow/preload"
)

// Metrics is the union of the component metric hooks.
// *prom.Adapter implements it.
type Metrics interface {
	cache.Metrics
	pager.Metrics
	preload.Metrics
}

// NoopMetrics does nothing; it is the default.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                    {}
func (NoopMetrics) Miss()                   {}
func (NoopMetrics) Evict(cache.EvictReason) {}
func (NoopMetrics) Size(int)                {}
func (NoopMetrics) FetchStarted()           {}
func (NoopMetrics) FetchFailed()            {}
func (NoopMetrics) ItemsAppended(int)       {}
func (NoopMetrics) StaleDiscarded()         {}
func (NoopMetrics) PreloadIssued()          {}
func (NoopMetrics) PreloadDropped(string)   {}

var _ Metrics = NoopMetrics{}
