package goSignIn

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a counter or histogram tracked by [Metrics].
type MetricID uint16

const (
	// MetricSignInStarted counts authorization URLs handed to the opener.
	MetricSignInStarted MetricID = iota
	// MetricSignInRejected counts sign-in calls that failed a precondition or
	// could not open the browser.
	MetricSignInRejected
	// MetricRedirectHandled counts redirects that started a code exchange.
	MetricRedirectHandled
	// MetricRedirectIgnored counts redirects with a foreign scheme or no code.
	MetricRedirectIgnored
	// MetricExchangeSuccess counts authorization codes traded for tokens.
	MetricExchangeSuccess
	// MetricExchangeFailure counts failed code exchanges.
	MetricExchangeFailure
	// MetricRefreshSuccess counts merged refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refreshes that left the token set unchanged.
	MetricRefreshFailure
	// MetricAccessTokenCached counts access tokens served without network I/O.
	MetricAccessTokenCached
	// MetricProfileSuccess counts decoded profile fetches.
	MetricProfileSuccess
	// MetricProfileFailure counts failed profile fetches.
	MetricProfileFailure
	// MetricSignOut counts sign-out calls.
	MetricSignOut
	// MetricStoreFailure counts token store reads and writes that failed.
	MetricStoreFailure
	// MetricTransportLatency is the round-trip latency histogram.
	MetricTransportLatency
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

// Metrics holds lock-free counters and a latency histogram.
//
// All methods are nil-safe and safe for concurrent use.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter and histogram.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a metrics set. A disabled set records nothing.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether latency observations are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the histogram for id. Only
// [MetricTransportLatency] carries a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricTransportLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and, when enabled, the latency buckets.
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
		if id == MetricTransportLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricTransportLatency].buckets[i])
		}
		s.Histograms[MetricTransportLatency] = buckets
	}

	return s
}

// Bucket upper bounds in milliseconds; the last bucket is unbounded.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 50:
		return 0
	case ms <= 100:
		return 1
	case ms <= 250:
		return 2
	case ms <= 500:
		return 3
	case ms <= 1000:
		return 4
	case ms <= 2500:
		return 5
	case ms <= 5000:
		return 6
	default:
		return 7
	}
}
