package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRedirectServed is a no-op.
func (n *NoopRecorder) IncRedirectServed() {}

// IncRedirectCacheHit is a no-op.
func (n *NoopRecorder) IncRedirectCacheHit() {}

// IncRedirectCacheMiss is a no-op.
func (n *NoopRecorder) IncRedirectCacheMiss() {}

// ObserveRedirectDuration is a no-op.
func (n *NoopRecorder) ObserveRedirectDuration(duration time.Duration) {}

// IncLinkCreated is a no-op.
func (n *NoopRecorder) IncLinkCreated() {}

// IncClickRecorded is a no-op.
func (n *NoopRecorder) IncClickRecorded() {}

// IncBookingRecorded is a no-op.
func (n *NoopRecorder) IncBookingRecorded(attributed bool) {}

// IncSaleRecorded is a no-op.
func (n *NoopRecorder) IncSaleRecorded() {}

// IncSaleDropped is a no-op.
func (n *NoopRecorder) IncSaleDropped() {}

// IncStatsRefresh is a no-op.
func (n *NoopRecorder) IncStatsRefresh(status string) {}
