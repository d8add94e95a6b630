package fhirshorthand

import (
	"sync/atomic"
	"time"
)

// Metrics tracks definition-resolution metrics using lock-free atomic
// operations. All methods are safe for concurrent use.
type Metrics struct {
	// Fishing counts
	fishHits   atomic.Uint64
	fishMisses atomic.Uint64

	// Materialization counts
	materializations       atomic.Uint64
	materializationsFailed atomic.Uint64

	// Timing (stored as nanoseconds)
	materializeTimeTotal atomic.Uint64

	// Cache metrics
	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordFish records a registry lookup and whether it hit.
func (m *Metrics) RecordFish(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.fishHits.Add(1)
	} else {
		m.fishMisses.Add(1)
	}
}

// RecordMaterialization records a materialization attempt and its duration.
func (m *Metrics) RecordMaterialization(ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.materializations.Add(1)
	if !ok {
		m.materializationsFailed.Add(1)
	}
	m.materializeTimeTotal.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheHit records a materialization cache hit.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a materialization cache miss.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Add(1)
}

// Snapshot is a point-in-time copy of the metrics.
type Snapshot struct {
	FishHits               uint64
	FishMisses             uint64
	Materializations       uint64
	MaterializationsFailed uint64
	MaterializeTimeTotal   time.Duration
	CacheHits              uint64
	CacheMisses            uint64
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		FishHits:               m.fishHits.Load(),
		FishMisses:             m.fishMisses.Load(),
		Materializations:       m.materializations.Load(),
		MaterializationsFailed: m.materializationsFailed.Load(),
		MaterializeTimeTotal:   time.Duration(m.materializeTimeTotal.Load()),
		CacheHits:              m.cacheHits.Load(),
		CacheMisses:            m.cacheMisses.Load(),
	}
}

// CacheHitRate returns the cache hit rate as a value between 0 and 1.
// Returns 0 if no cache lookups have been recorded.
func (m *Metrics) CacheHitRate() float64 {
	if m == nil {
		return 0
	}
	hits := m.cacheHits.Load()
	total := hits + m.cacheMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
