package goCred

import (
	"sync/atomic"
	"time"
)

// MetricID names one in-process counter.
type MetricID uint16

const (
	// MetricRegisterSuccess counts records created by Register.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterDuplicate counts Register calls for an existing username.
	MetricRegisterDuplicate
	// MetricPasswordSetSuccess counts successful SetPassword and Rehash calls made by the service.
	MetricPasswordSetSuccess
	// MetricPasswordSetRejected counts passwords rejected by the engine.
	MetricPasswordSetRejected
	// MetricValidateSuccess counts candidates that matched.
	MetricValidateSuccess
	// MetricValidateFailure counts candidates that did not match, including unknown users.
	MetricValidateFailure
	// MetricLoginRateLimited counts authentications refused by the throttle.
	MetricLoginRateLimited
	// MetricPasswordChangeSuccess counts completed ChangePassword calls.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeInvalidOld counts ChangePassword calls with a wrong old password.
	MetricPasswordChangeInvalidOld
	// MetricEngineUpgraded counts records rehashed under the default engine on login.
	MetricEngineUpgraded
	// MetricRecordDeleted counts deleted records.
	MetricRecordDeleted
	// MetricStoreFailure counts store errors other than not-found.
	MetricStoreFailure
	// MetricTokenIssued counts access tokens issued by Login.
	MetricTokenIssued
	// MetricDigestLatency is the histogram of digest computation time.
	MetricDigestLatency
	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricRegisterSuccess:          "register_success",
	MetricRegisterDuplicate:        "register_duplicate",
	MetricPasswordSetSuccess:       "password_set_success",
	MetricPasswordSetRejected:      "password_set_rejected",
	MetricValidateSuccess:          "validate_success",
	MetricValidateFailure:          "validate_failure",
	MetricLoginRateLimited:         "login_rate_limited",
	MetricPasswordChangeSuccess:    "password_change_success",
	MetricPasswordChangeInvalidOld: "password_change_invalid_old",
	MetricEngineUpgraded:           "engine_upgraded",
	MetricRecordDeleted:            "record_deleted",
	MetricStoreFailure:             "store_failure",
	MetricTokenIssued:              "token_issued",
	MetricDigestLatency:            "digest_latency",
}

// String returns the snake_case metric name.
func (id MetricID) String() string {
	if id >= metricIDCount {
		return "unknown"
	}
	return metricNames[id]
}

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

// Metrics is a fixed set of lock-free counters plus one latency histogram.
// A nil or disabled Metrics records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters.
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

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the digest histogram is recorded.
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

// Observe records d in the histogram for id. Only MetricDigestLatency has a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricDigestLatency {
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

// Snapshot copies every counter, and the histogram when enabled.
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
		if id == MetricDigestLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricDigestLatency].buckets[i])
		}
		s.Histograms[MetricDigestLatency] = buckets
	}

	return s
}

// Bucket upper bounds: 50µs, 250µs, 1ms, 5ms, 25ms, 100ms, 500ms, +Inf.
func bucketIndex(d time.Duration) int {
	us := d.Microseconds()

	switch {
	case us <= 50:
		return 0
	case us <= 250:
		return 1
	case us <= 1000:
		return 2
	case us <= 5000:
		return 3
	case us <= 25000:
		return 4
	case us <= 100000:
		return 5
	case us <= 500000:
		return 6
	default:
		return 7
	}
}
