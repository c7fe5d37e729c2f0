package goMFA

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// AddTrustedDevice registers a device with accountID's trusted-device
// registry and returns its generated identifier. When the registry is at
// capacity, the least recently used entries are evicted; registration never
// fails for being full. The account must already have an MFA profile.
func (e *Engine) AddTrustedDevice(ctx context.Context, accountID string, info DeviceInfo) (string, error) {
	if e == nil || e.store == nil {
		return "", ErrEngineNotReady
	}
	if accountID == "" {
		return "", ErrAccountIDRequired
	}

	p, err := e.store.ReadProfile(ctx, accountID)
	if err != nil {
		return "", e.wrapStore(err)
	}
	if p == nil {
		return "", ErrMFANotConfigured
	}

	now := e.now().Unix()
	device := TrustedDevice{
		ID:         uuid.NewString(),
		Label:      info.Label,
		AddedAt:    now,
		LastUsedAt: now,
	}

	err = e.store.PutTrustedDevice(ctx, accountID, device, e.config.TrustedDevices.MaxDevices)
	if err != nil {
		return "", e.wrapStore(err)
	}

	e.metricInc(MetricDeviceTrusted)
	e.emitAudit(ctx, auditEventDeviceTrusted, true, accountID, "", nil, func() map[string]string {
		return map[string]string{
			"device_id": device.ID,
			"label":     device.Label,
		}
	})
	return device.ID, nil
}

// IsDeviceTrusted reports whether deviceID is in accountID's registry. A hit
// slides the device's LastUsedAt to now, keeping actively used devices away
// from the eviction end. Unknown accounts and devices report false without
// error.
func (e *Engine) IsDeviceTrusted(ctx context.Context, accountID, deviceID string) (bool, error) {
	if e == nil || e.store == nil {
		return false, ErrEngineNotReady
	}
	if accountID == "" {
		return false, ErrAccountIDRequired
	}
	if deviceID == "" {
		return false, nil
	}

	found, err := e.store.TouchTrustedDevice(ctx, accountID, deviceID, e.now())
	if err != nil {
		return false, e.wrapStore(err)
	}

	if found {
		e.metricInc(MetricDeviceTrustHit)
		e.emitAudit(ctx, auditEventDeviceTouched, true, accountID, "", nil, func() map[string]string {
			return map[string]string{"device_id": deviceID}
		})
	} else {
		e.metricInc(MetricDeviceTrustMiss)
	}
	return found, nil
}

// ListTrustedDevices returns accountID's registry ordered by descending
// LastUsedAt. An account with no profile lists empty.
func (e *Engine) ListTrustedDevices(ctx context.Context, accountID string) ([]TrustedDevice, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if accountID == "" {
		return nil, ErrAccountIDRequired
	}

	p, err := e.store.ReadProfile(ctx, accountID)
	if err != nil {
		return nil, e.wrapStore(err)
	}
	if p == nil {
		return nil, nil
	}

	devices := make([]TrustedDevice, len(p.TrustedDevices))
	copy(devices, p.TrustedDevices)
	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].LastUsedAt > devices[j].LastUsedAt
	})
	return devices, nil
}

// RemoveTrustedDevice drops deviceID from accountID's registry. Removing an
// unknown device returns [ErrDeviceNotFound].
func (e *Engine) RemoveTrustedDevice(ctx context.Context, accountID, deviceID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if accountID == "" {
		return ErrAccountIDRequired
	}

	removed, err := e.store.RemoveTrustedDevice(ctx, accountID, deviceID)
	if err != nil {
		return e.wrapStore(err)
	}
	if !removed {
		return ErrDeviceNotFound
	}

	e.metricInc(MetricDeviceRemoved)
	e.emitAudit(ctx, auditEventDeviceRemoved, true, accountID, "", nil, func() map[string]string {
		return map[string]string{"device_id": deviceID}
	})
	return nil
}
