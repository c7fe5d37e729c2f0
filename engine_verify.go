package goMFA

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
	"time"
)

// Verify checks credential against accountID's MFA profile using the given
// method.
//
// A mismatch is not an error: Verify returns (false, nil), books one failed
// attempt, and may engage the lockout window. Errors are reserved for the
// gates around the comparison, in precedence order: [ErrMethodUnsupported]
// before any store access, [ErrMFANotConfigured] for an absent profile, then
// [*AccountLockedError] while a lockout window is active. Infrastructure
// failures surface as [ErrStoreUnavailable] or [ErrSMSChannelUnavailable].
//
// A success clears the failure counter and any expired lock state.
func (e *Engine) Verify(ctx context.Context, accountID, credential string, method Method) (bool, error) {
	if e == nil || e.store == nil {
		return false, ErrEngineNotReady
	}
	if accountID == "" {
		return false, ErrAccountIDRequired
	}

	switch method {
	case MethodTOTP, MethodBackup, MethodSMS:
	default:
		return false, fmt.Errorf("%w: %q", ErrMethodUnsupported, string(method))
	}

	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Observe(MetricVerifyLatency, time.Since(start))
		}
	}()

	p, err := e.store.ReadProfile(ctx, accountID)
	if err != nil {
		return false, e.wrapStore(err)
	}
	if p == nil {
		return false, ErrMFANotConfigured
	}

	if remaining := e.lockRemaining(p.LockedUntil); remaining > 0 {
		e.metricInc(MetricVerifyRejectedLocked)
		lockedErr := &AccountLockedError{Remaining: remaining}
		e.emitAudit(ctx, auditEventVerifyLocked, false, accountID, method, lockedErr, nil)
		return false, lockedErr
	}

	var matched bool
	switch method {
	case MethodTOTP:
		matched, err = e.verifyTOTP(p, credential)
	case MethodBackup:
		matched, err = e.verifyBackupCode(ctx, p, credential)
	case MethodSMS:
		matched, err = e.verifySMSCode(ctx, p, credential)
	}
	if err != nil {
		return false, err
	}

	if !matched {
		e.incVerifyFailure(method)
		if err := e.recordFailure(ctx, accountID, method); err != nil {
			return false, err
		}
		e.emitAudit(ctx, auditEventVerifyFailure, false, accountID, method, nil, nil)
		return false, nil
	}

	if err := e.afterVerifySuccess(ctx, p, method); err != nil {
		return false, err
	}
	e.incVerifySuccess(method)
	e.emitAudit(ctx, auditEventVerifySuccess, true, accountID, method, nil, nil)
	return true, nil
}

// verifyTOTP checks a TOTP token. A disabled or pending factor rejects the
// attempt; it still counts against the lockout counter.
func (e *Engine) verifyTOTP(p *MFAProfile, credential string) (bool, error) {
	if !p.TOTP.Enabled || len(p.TOTP.Secret) == 0 {
		return false, nil
	}
	return e.totp.VerifyCode(p.TOTP.Secret, credential, e.now())
}

// verifyBackupCode consumes a backup code atomically through the store, so
// concurrent presentations of the same code yield exactly one success.
func (e *Engine) verifyBackupCode(ctx context.Context, p *MFAProfile, credential string) (bool, error) {
	canonical := canonicalizeBackupCode(credential)
	if canonical == "" {
		return false, nil
	}

	consumed, err := e.store.ConsumeBackupCode(ctx, p.AccountID, backupCodeHash(p.AccountID, canonical))
	if err != nil {
		return false, e.wrapStore(err)
	}
	return consumed, nil
}

// verifySMSCode compares credential against the pending code surfaced by the
// SMS channel. Delivery, expiry, and single-use of the pending code are the
// channel's contract, not ours.
func (e *Engine) verifySMSCode(ctx context.Context, p *MFAProfile, credential string) (bool, error) {
	if e.sms == nil {
		return false, ErrSMSChannelUnavailable
	}

	pending, err := e.sms.GetPendingCode(ctx, p.AccountID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSMSChannelUnavailable, err)
	}
	if pending == "" {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(pending), []byte(credential)) == 1, nil
}

// afterVerifySuccess clears lockout bookkeeping and, on the first successful
// SMS verification, marks the SMS factor verified.
func (e *Engine) afterVerifySuccess(ctx context.Context, p *MFAProfile, method Method) error {
	now := e.now()
	if err := e.store.ClearFailures(ctx, p.AccountID, now); err != nil {
		return e.wrapStore(err)
	}

	if method == MethodSMS && !p.SMS.Enabled {
		sms := ChannelState{Enabled: true, VerifiedAt: now.Unix()}
		if err := e.store.UpsertProfile(ctx, p.AccountID, ProfilePatch{SMS: &sms}); err != nil {
			return e.wrapStore(err)
		}
	}
	return nil
}

// recordFailure books one failed attempt and emits the lock transition when
// the threshold is crossed.
func (e *Engine) recordFailure(ctx context.Context, accountID string, method Method) error {
	state, err := e.store.RecordFailure(
		ctx,
		accountID,
		e.config.Lockout.Threshold,
		e.config.Lockout.Duration,
		e.now(),
	)
	if err != nil {
		return e.wrapStore(err)
	}

	if state.JustLocked {
		e.metricInc(MetricAccountLocked)
		e.emitAudit(ctx, auditEventAccountLocked, false, accountID, method, ErrAccountLocked, func() map[string]string {
			return map[string]string{
				"attempts": strconv.FormatUint(uint64(state.Attempts), 10),
			}
		})
	}
	return nil
}

func (e *Engine) incVerifySuccess(method Method) {
	switch method {
	case MethodTOTP:
		e.metricInc(MetricTOTPSuccess)
	case MethodBackup:
		e.metricInc(MetricBackupCodeUsed)
	case MethodSMS:
		e.metricInc(MetricSMSSuccess)
	}
}

func (e *Engine) incVerifyFailure(method Method) {
	switch method {
	case MethodTOTP:
		e.metricInc(MetricTOTPFailure)
	case MethodBackup:
		e.metricInc(MetricBackupCodeFailed)
	case MethodSMS:
		e.metricInc(MetricSMSFailure)
	}
}

// DisableMFA soft-resets accountID's MFA state after re-verifying possession
// of a live factor through credential and method. The profile row survives
// with factors disabled, backup codes cleared, and trusted devices dropped.
// A failed confirmation returns [ErrCodeInvalid] and counts as a normal
// verification failure; the profile stays untouched.
func (e *Engine) DisableMFA(ctx context.Context, accountID, credential string, method Method) error {
	ok, err := e.Verify(ctx, accountID, credential, method)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeInvalid
	}

	var (
		totp        TOTPState
		sms         ChannelState
		email       ChannelState
		requireMFA  bool
		hashes      = [][32]byte{}
		used        = [][32]byte{}
		generatedAt int64
		devices     = []TrustedDevice{}
	)
	err = e.store.UpsertProfile(ctx, accountID, ProfilePatch{
		TOTP:                   &totp,
		SMS:                    &sms,
		Email:                  &email,
		RequireMFA:             &requireMFA,
		BackupCodeHashes:       &hashes,
		UsedCodeHashes:         &used,
		BackupCodesGeneratedAt: &generatedAt,
		TrustedDevices:         &devices,
	})
	if err != nil {
		return e.wrapStore(err)
	}

	e.metricInc(MetricMFADisabled)
	e.emitAudit(ctx, auditEventDisabled, true, accountID, method, nil, nil)
	return nil
}

// RegenerateBackupCodes invalidates the entire live batch and issues a fresh
// one, gated on re-verifying a live factor. The returned plaintext codes are
// shown exactly once.
func (e *Engine) RegenerateBackupCodes(ctx context.Context, accountID, credential string, method Method) ([]string, error) {
	ok, err := e.Verify(ctx, accountID, credential, method)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCodeInvalid
	}

	codes, err := newBackupCodeBatch(e.config.BackupCodes.Count, e.config.BackupCodes.Length)
	if err != nil {
		return nil, err
	}
	hashes := make([][32]byte, len(codes))
	for i, code := range codes {
		hashes[i] = backupCodeHash(accountID, code)
	}

	used := [][32]byte{}
	generatedAt := e.now().Unix()
	err = e.store.UpsertProfile(ctx, accountID, ProfilePatch{
		BackupCodeHashes:       &hashes,
		UsedCodeHashes:         &used,
		BackupCodesGeneratedAt: &generatedAt,
	})
	if err != nil {
		return nil, e.wrapStore(err)
	}

	display := make([]string, len(codes))
	for i, code := range codes {
		display[i] = formatBackupCode(code)
	}

	e.metricInc(MetricBackupCodeRegenerated)
	e.emitAudit(ctx, auditEventBackupRegenerated, true, accountID, method, nil, nil)
	return display, nil
}

// Unlock administratively clears an active lockout window and the failure
// counter. It does not stamp a verification success.
func (e *Engine) Unlock(ctx context.Context, accountID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if accountID == "" {
		return ErrAccountIDRequired
	}

	p, err := e.store.ReadProfile(ctx, accountID)
	if err != nil {
		return e.wrapStore(err)
	}
	if p == nil {
		return ErrMFANotConfigured
	}

	var (
		attempts    uint32
		lockedUntil int64
	)
	err = e.store.UpsertProfile(ctx, accountID, ProfilePatch{
		FailedAttempts: &attempts,
		LockedUntil:    &lockedUntil,
	})
	if err != nil {
		return e.wrapStore(err)
	}

	e.metricInc(MetricAccountUnlocked)
	e.emitAudit(ctx, auditEventAccountUnlocked, true, accountID, "", nil, nil)
	return nil
}

// Profile returns a copy of accountID's MFA profile, or nil when none
// exists. The copy includes secret material; callers expose it with care.
func (e *Engine) Profile(ctx context.Context, accountID string) (*MFAProfile, error) {
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
	return p, nil
}
