package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RedirectsServed         uint64
	RedirectCacheHits       uint64
	RedirectCacheMisses     uint64
	RedirectDurationCount   uint64
	RedirectDurationTotalNs int64
	LinksCreated            uint64
	ClicksRecorded          uint64
	BookingsAttributed      uint64
	BookingsUnattributed    uint64
	SalesRecorded           uint64
	SalesDropped            uint64
	StatsRefreshSuccess     uint64
	StatsRefreshFailed      uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	redirectsServed         uint64
	redirectCacheHits       uint64
	redirectCacheMisses     uint64
	redirectDurationCount   uint64
	redirectDurationTotalNs int64
	linksCreated            uint64
	clicksRecorded          uint64
	bookingsAttributed      uint64
	bookingsUnattributed    uint64
	salesRecorded           uint64
	salesDropped            uint64
	statsRefreshSuccess     uint64
	statsRefreshFailed      uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		RedirectsServed:         atomic.LoadUint64(&m.redirectsServed),
		RedirectCacheHits:       atomic.LoadUint64(&m.redirectCacheHits),
		RedirectCacheMisses:     atomic.LoadUint64(&m.redirectCacheMisses),
		RedirectDurationCount:   atomic.LoadUint64(&m.redirectDurationCount),
		RedirectDurationTotalNs: atomic.LoadInt64(&m.redirectDurationTotalNs),
		LinksCreated:            atomic.LoadUint64(&m.linksCreated),
		ClicksRecorded:          atomic.LoadUint64(&m.clicksRecorded),
		BookingsAttributed:      atomic.LoadUint64(&m.bookingsAttributed),
		BookingsUnattributed:    atomic.LoadUint64(&m.bookingsUnattributed),
		SalesRecorded:           atomic.LoadUint64(&m.salesRecorded),
		SalesDropped:            atomic.LoadUint64(&m.salesDropped),
		StatsRefreshSuccess:     atomic.LoadUint64(&m.statsRefreshSuccess),
		StatsRefreshFailed:      atomic.LoadUint64(&m.statsRefreshFailed),
	}
}

// IncRedirectServed increments the redirect counter.
func (m *InMemoryRecorder) IncRedirectServed() {
	atomic.AddUint64(&m.redirectsServed, 1)
}

// IncRedirectCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncRedirectCacheHit() {
	atomic.AddUint64(&m.redirectCacheHits, 1)
}

// IncRedirectCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncRedirectCacheMiss() {
	atomic.AddUint64(&m.redirectCacheMisses, 1)
}

// ObserveRedirectDuration records redirect duration.
func (m *InMemoryRecorder) ObserveRedirectDuration(duration time.Duration) {
	atomic.AddUint64(&m.redirectDurationCount, 1)
	atomic.AddInt64(&m.redirectDurationTotalNs, duration.Nanoseconds())
}

// IncLinkCreated increments link created counter.
func (m *InMemoryRecorder) IncLinkCreated() {
	atomic.AddUint64(&m.linksCreated, 1)
}

// IncClickRecorded increments the click counter.
func (m *InMemoryRecorder) IncClickRecorded() {
	atomic.AddUint64(&m.clicksRecorded, 1)
}

// IncBookingRecorded increments the attributed or unattributed booking counter.
func (m *InMemoryRecorder) IncBookingRecorded(attributed bool) {
	if attributed {
		atomic.AddUint64(&m.bookingsAttributed, 1)
	} else {
		atomic.AddUint64(&m.bookingsUnattributed, 1)
	}
}

// IncSaleRecorded increments the sale counter.
func (m *InMemoryRecorder) IncSaleRecorded() {
	atomic.AddUint64(&m.salesRecorded, 1)
}

// IncSaleDropped increments the dropped sale counter.
func (m *InMemoryRecorder) IncSaleDropped() {
	atomic.AddUint64(&m.salesDropped, 1)
}

// IncStatsRefresh increments the refresh counter for the given status.
func (m *InMemoryRecorder) IncStatsRefresh(status string) {
	if status == "success" {
		atomic.AddUint64(&m.statsRefreshSuccess, 1)
	} else {
		atomic.AddUint64(&m.statsRefreshFailed, 1)
	}
}
