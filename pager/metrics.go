package pager

// Metrics receives pagination signals.
type Metrics interface {
	FetchStarted()
	FetchFailed()
	ItemsAppended(n int)
	StaleDiscarded()
}

// NoopMetrics does nothing; it is the default.
type NoopMetrics struct{}

func (NoopMetrics) FetchStarted()     {}
func (NoopMetrics) FetchFailed()      {}
func (NoopMetrics) ItemsAppended(int) {}
func (NoopMetrics) StaleDiscarded()   {}

var _ Metrics = NoopMetrics{}
