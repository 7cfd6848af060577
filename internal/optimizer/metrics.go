package optimizer

import (
	"sync/atomic"
	"time"
)

// Metrics tracks optimizer throughput. All values are plain counters
// updated inside the pipeline.
type Metrics struct {
	total     atomic.Uint64
	processed atomic.Uint64
	dropped   atomic.Uint64
	throttled atomic.Uint64

	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64

	procTotalNs atomic.Int64
	procPeakNs  atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordAccepted records a processed event with its pipeline time.
func (m *Metrics) RecordAccepted(duration time.Duration) {
	m.total.Add(1)
	m.processed.Add(1)
	m.recordDuration(duration)
}

// RecordDropped records an event removed by deduplication.
func (m *Metrics) RecordDropped() {
	m.total.Add(1)
	m.dropped.Add(1)
}

// RecordThrottled records an event removed by rate limiting.
func (m *Metrics) RecordThrottled() {
	m.total.Add(1)
	m.dropped.Add(1)
	m.throttled.Add(1)
}

// RecordCache records a coordinate cache lookup outcome.
func (m *Metrics) RecordCache(hits, misses uint64) {
	m.cacheHits.Store(hits)
	m.cacheMisses.Store(misses)
}

func (m *Metrics) recordDuration(duration time.Duration) {
	ns := duration.Nanoseconds()
	m.procTotalNs.Add(ns)

	for {
		old := m.procPeakNs.Load()
		if ns <= old {
			break
		}
		if m.procPeakNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Snapshot is a point-in-time view of optimizer metrics.
type Snapshot struct {
	// Total is every event offered to the pipeline.
	Total uint64
	// Processed is the count of events that survived all stages.
	Processed uint64
	// Dropped is the count removed by deduplication or throttling.
	Dropped uint64
	// Throttled is the subset of Dropped removed by rate limiting.
	Throttled uint64

	// AvgProcessNs is the rolling average pipeline time per accepted
	// event, in nanoseconds.
	AvgProcessNs int64
	// PeakProcessNs is the worst single-event pipeline time observed.
	PeakProcessNs int64

	// CacheHitRate is coordinate cache hits over lookups, in [0, 1].
	CacheHitRate float64
	// ThrottleRate is throttled events over total, in [0, 1].
	ThrottleRate float64
	// DropRate is dropped events over total, in [0, 1].
	DropRate float64

	// Uptime is time since the optimizer was created.
	Uptime time.Duration
}

// Snapshot returns current metric values.
func (m *Metrics) Snapshot() Snapshot {
	total := m.total.Load()
	processed := m.processed.Load()
	dropped := m.dropped.Load()
	throttled := m.throttled.Load()
	hits := m.cacheHits.Load()
	misses := m.cacheMisses.Load()

	s := Snapshot{
		Total:         total,
		Processed:     processed,
		Dropped:       dropped,
		Throttled:     throttled,
		PeakProcessNs: m.procPeakNs.Load(),
		Uptime:        time.Since(m.startTime),
	}

	if processed > 0 {
		s.AvgProcessNs = m.procTotalNs.Load() / int64(processed)
	}
	if lookups := hits + misses; lookups > 0 {
		s.CacheHitRate = float64(hits) / float64(lookups)
	}
	if total > 0 {
		s.ThrottleRate = float64(throttled) / float64(total)
		s.DropRate = float64(dropped) / float64(total)
	}

	return s
}
