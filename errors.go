package goMFA

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAccountIDRequired is returned when an operation is called with an
	// empty account identifier, before any store access.
	ErrAccountIDRequired = errors.New("account id required")
	// ErrTOTPAlreadyEnabled is returned when enrollment is attempted for an
	// account whose TOTP factor is already enabled.
	ErrTOTPAlreadyEnabled = errors.New("totp already enabled")
	// ErrEnrollmentNotStarted is returned when enrollment confirmation runs
	// without a pending secret.
	ErrEnrollmentNotStarted = errors.New("totp enrollment not started")
	// ErrMFANotConfigured is returned when verification targets an account
	// with no MFA profile.
	ErrMFANotConfigured = errors.New("mfa not configured")
	// ErrCodeInvalid is returned when a presented TOTP token, backup code, or
	// SMS code does not match stored state.
	ErrCodeInvalid = errors.New("invalid mfa code")
	// ErrAccountLocked is returned while a lockout window is active. Match
	// with errors.Is; the concrete value is an [AccountLockedError] carrying
	// the remaining duration.
	ErrAccountLocked = errors.New("account locked")
	// ErrMethodUnsupported is returned for a verification method outside
	// totp, backup, and sms.
	ErrMethodUnsupported = errors.New("unsupported mfa method")
	// ErrStoreUnavailable is returned when the credential store backend is
	// unreachable. Not retried here; callers own retry policy.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrSMSChannelUnavailable is returned when the SMS delivery collaborator
	// fails to accept or surface a code.
	ErrSMSChannelUnavailable = errors.New("sms channel unavailable")
	// ErrDeviceNotFound is returned when a trusted-device removal targets an
	// unknown device identifier.
	ErrDeviceNotFound = errors.New("trusted device not found")
	// ErrEngineNotReady is returned when an Engine is used before Build or
	// with a missing dependency.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// AccountLockedError reports an active lockout window. It matches
// [ErrAccountLocked] under errors.Is.
type AccountLockedError struct {
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked: retry in %s", e.Remaining.Round(time.Minute))
}

func (e *AccountLockedError) Is(target error) bool {
	return target == ErrAccountLocked
}
