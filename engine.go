package goMFA

import (
	"fmt"
	"time"
)

// Engine exposes the MFA operations. Engine instances are configured through
// [Builder] and treated as immutable afterwards; methods are safe for
// concurrent use.
type Engine struct {
	config  Config
	store   ProfileStore
	sms     SMSChannel
	totp    *totpManager
	audit   *auditDispatcher
	metrics *Metrics

	// now is the clock used for every time comparison. Overridden in tests.
	now func() time.Time
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a deep copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// wrapStore converts a collaborator failure into the retryable
// infrastructure error callers dispatch on.
func (e *Engine) wrapStore(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// lockRemaining returns the active lock window left on the profile, zero
// when no lock applies. Expiry is lazy: a stale deadline simply compares in
// the past, no unlock job exists.
func (e *Engine) lockRemaining(lockedUntil int64) time.Duration {
	if lockedUntil == 0 {
		return 0
	}
	remaining := time.Unix(lockedUntil, 0).Sub(e.now())
	if remaining <= 0 {
		return 0
	}
	return remaining
}
