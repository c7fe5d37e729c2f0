package goMFA

import (
	"context"
	"time"

	"github.com/MrEthical07/goMFA/internal/profile"
)

// Method selects the credential type presented to [Engine.Verify].
type Method string

const (
	// MethodTOTP verifies a time-based one-time password.
	MethodTOTP Method = "totp"
	// MethodBackup verifies and consumes a single-use backup code.
	MethodBackup Method = "backup"
	// MethodSMS verifies a code delivered through the SMS channel.
	MethodSMS Method = "sms"
)

// MFAProfile is the per-account MFA record held by the credential store.
// Exactly one profile exists per account; timestamps are unix seconds with
// zero meaning unset.
type MFAProfile = profile.Profile

// TOTPState is the TOTP sub-record of [MFAProfile].
type TOTPState = profile.TOTPState

// ChannelState is the SMS/email sub-record of [MFAProfile].
type ChannelState = profile.ChannelState

// TrustedDevice is one entry of the bounded trusted-device registry.
type TrustedDevice = profile.TrustedDevice

// ProfilePatch is a partial profile update; only non-nil fields are applied.
type ProfilePatch = profile.Patch

// LockState is the outcome of an atomic failure recording.
type LockState = profile.LockState

// ProfileStore is the credential store contract. [Builder.WithRedis] wires
// the provided Redis implementation; callers may substitute their own with
// [Builder.WithProfileStore]. Every read-modify-write method must be atomic
// per account row: two concurrent ConsumeBackupCode calls with the same hash
// must not both report true.
type ProfileStore interface {
	// ReadProfile returns nil, nil when the account has no profile.
	ReadProfile(ctx context.Context, accountID string) (*MFAProfile, error)
	// UpsertProfile applies a partial update, creating the row when absent.
	UpsertProfile(ctx context.Context, accountID string, patch ProfilePatch) error
	// ConsumeBackupCode adds hash to the used set iff it belongs to the live
	// batch and is not already used, reporting whether it consumed.
	ConsumeBackupCode(ctx context.Context, accountID string, hash [32]byte) (bool, error)
	// RecordFailure atomically increments the failure counter and computes
	// the lock transition. An active lock is never extended.
	RecordFailure(ctx context.Context, accountID string, threshold int, lockFor time.Duration, now time.Time) (LockState, error)
	// ClearFailures resets the counter, clears any lock, and stamps the
	// success time.
	ClearFailures(ctx context.Context, accountID string, now time.Time) error
	// PutTrustedDevice appends device and truncates to capacity by
	// descending LastUsedAt.
	PutTrustedDevice(ctx context.Context, accountID string, device TrustedDevice, capacity int) error
	// TouchTrustedDevice slides LastUsedAt for deviceID, reporting presence.
	TouchTrustedDevice(ctx context.Context, accountID, deviceID string, now time.Time) (bool, error)
	// RemoveTrustedDevice drops deviceID, reporting whether it was present.
	RemoveTrustedDevice(ctx context.Context, accountID, deviceID string) (bool, error)
}

// SMSChannel is the delivery collaborator for SMS codes. Implementations own
// delivery, expiry, and single-use semantics of the pending code; this core
// only compares against what GetPendingCode returns.
type SMSChannel interface {
	SendCode(ctx context.Context, accountID, code string) error
	GetPendingCode(ctx context.Context, accountID string) (string, error)
}

// TOTPEnrollment is returned by [Engine.BeginTOTPEnrollment]. BackupCodes is
// the only time the plaintext batch is visible; the store keeps hashes.
type TOTPEnrollment struct {
	Secret          string
	ProvisioningURI string
	BackupCodes     []string
}

// DeviceInfo describes a device being registered with
// [Engine.AddTrustedDevice].
type DeviceInfo struct {
	Label string
}
