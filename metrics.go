package goMFA

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricEnrollStarted counts begun TOTP enrollments.
	MetricEnrollStarted MetricID = iota
	// MetricEnrollCompleted counts confirmed TOTP enrollments.
	MetricEnrollCompleted
	// MetricEnrollFailed counts enrollment confirmations that failed.
	MetricEnrollFailed
	// MetricTOTPSuccess counts successful TOTP verifications.
	MetricTOTPSuccess
	// MetricTOTPFailure counts failed TOTP verifications.
	MetricTOTPFailure
	// MetricBackupCodeUsed counts consumed backup codes.
	MetricBackupCodeUsed
	// MetricBackupCodeFailed counts rejected backup codes.
	MetricBackupCodeFailed
	// MetricBackupCodeRegenerated counts backup-code batch regenerations.
	MetricBackupCodeRegenerated
	// MetricSMSCodeSent counts codes handed to the SMS channel.
	MetricSMSCodeSent
	// MetricSMSSuccess counts successful SMS verifications.
	MetricSMSSuccess
	// MetricSMSFailure counts failed SMS verifications.
	MetricSMSFailure
	// MetricVerifyRejectedLocked counts verification attempts rejected by an
	// active lockout window.
	MetricVerifyRejectedLocked
	// MetricAccountLocked counts lock transitions.
	MetricAccountLocked
	// MetricAccountUnlocked counts explicit unlocks.
	MetricAccountUnlocked
	// MetricMFADisabled counts MFA-gated disable operations.
	MetricMFADisabled
	// MetricDeviceTrusted counts trusted-device registrations.
	MetricDeviceTrusted
	// MetricDeviceTrustHit counts trusted-device lookups that matched.
	MetricDeviceTrustHit
	// MetricDeviceTrustMiss counts trusted-device lookups that missed.
	MetricDeviceTrustMiss
	// MetricDeviceRemoved counts explicit trusted-device removals.
	MetricDeviceRemoved
	// MetricVerifyLatency is the Verify hot-path latency histogram.
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

// Metrics holds atomic counters and an optional latency histogram for the
// Verify path. When Enabled is false, all operations are no-ops.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counting is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the Verify latency histogram is active.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records one Verify latency sample.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricVerifyLatency {
		return
	}

	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns the current value of one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histograms.
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

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
