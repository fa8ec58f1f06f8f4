package preload

// Drop reasons reported to Metrics.PreloadDropped.
const (
	DropInFlight  = "in_flight"
	DropSaturated = "saturated"
	DropRate      = "rate"
)

// Metrics receives preload signals.
type Metrics interface {
	PreloadIssued()
	PreloadDropped(reason string)
}

// NoopMetrics does nothing; it is the default.
type NoopMetrics struct{}

func (NoopMetrics) PreloadIssued()        {}
func (NoopMetrics) PreloadDropped(string) {}

var _ Metrics = NoopMetrics{}
