// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Redirect metrics
	IncRedirectServed()
	IncRedirectCacheHit()
	IncRedirectCacheMiss()
	ObserveRedirectDuration(duration time.Duration)

	// Link management metrics
	IncLinkCreated()

	// Attribution ledger metrics
	IncClickRecorded()
	IncBookingRecorded(attributed bool)
	IncSaleRecorded()
	IncSaleDropped()

	// Stats refresh metrics
	IncStatsRefresh(status string) // status: "success" or "failed"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
