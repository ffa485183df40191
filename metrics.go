package goPass

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one Engine counter.
type MetricID uint16

const (
	// MetricGenerateSuccess counts tokens issued.
	MetricGenerateSuccess MetricID = iota
	// MetricGenerateFailure counts Generate calls that returned an error.
	MetricGenerateFailure
	// MetricVerifySuccess counts Verify calls that returned true.
	MetricVerifySuccess
	// MetricVerifyMismatch counts Verify calls where the token differed from the stored one.
	MetricVerifyMismatch
	// MetricVerifyExpired counts Verify calls where the matching token had expired.
	MetricVerifyExpired
	// MetricVerifyNoToken counts Verify calls for users who were never issued a token.
	MetricVerifyNoToken
	// MetricVerifyRejected counts Verify calls that failed input validation or lookup.
	MetricVerifyRejected
	// MetricRegisterSuccess counts successful Register calls.
	MetricRegisterSuccess
	// MetricRegisterFailure counts Register calls that returned an error.
	MetricRegisterFailure
	// MetricStoreError counts credential store failures across all operations.
	MetricStoreError
	// MetricVerifyLatency is the Verify latency histogram.
	MetricVerifyLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free Engine counters. The zero value and a nil pointer
// are both safe and record nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter. Histograms holds
// MetricVerifyLatency bucket counts when latency histograms are enabled.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns counters configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the histogram for id. Only MetricVerifyLatency has a
// histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricVerifyLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricVerifyLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricVerifyLatency].buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}

	return s
}

// LatencyBucketBounds returns the inclusive upper bound of each latency
// bucket except the last, which is unbounded.
func LatencyBucketBounds() []time.Duration {
	return []time.Duration{
		100 * time.Microsecond,
		500 * time.Microsecond,
		time.Millisecond,
		5 * time.Millisecond,
		10 * time.Millisecond,
		50 * time.Millisecond,
		250 * time.Millisecond,
	}
}

func bucketIndex(d time.Duration) int {
	switch {
	case d <= 100*time.Microsecond:
		return 0
	case d <= 500*time.Microsecond:
		return 1
	case d <= time.Millisecond:
		return 2
	case d <= 5*time.Millisecond:
		return 3
	case d <= 10*time.Millisecond:
		return 4
	case d <= 50*time.Millisecond:
		return 5
	case d <= 250*time.Millisecond:
		return 6
	default:
		return 7
	}
}
