package goMFA

import (
	"context"
)

// BeginTOTPEnrollment provisions a fresh TOTP secret and a new batch of
// single-use backup codes for accountID. label is the human-readable account
// name embedded in the provisioning URI, typically the email address; empty
// falls back to accountID.
//
// The returned plaintext backup codes are shown exactly once; only their
// hashes are persisted. Calling again before confirmation overwrites the
// pending secret and batch. Once the factor is enabled this returns
// [ErrTOTPAlreadyEnabled]; disable MFA first to re-enroll.
func (e *Engine) BeginTOTPEnrollment(ctx context.Context, accountID, label string) (*TOTPEnrollment, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if accountID == "" {
		return nil, ErrAccountIDRequired
	}

	current, err := e.store.ReadProfile(ctx, accountID)
	if err != nil {
		return nil, e.wrapStore(err)
	}
	if current != nil && current.TOTP.Enabled {
		return nil, ErrTOTPAlreadyEnabled
	}

	secretRaw, secretB32, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}

	codes, err := newBackupCodeBatch(e.config.BackupCodes.Count, e.config.BackupCodes.Length)
	if err != nil {
		return nil, err
	}
	hashes := make([][32]byte, len(codes))
	for i, code := range codes {
		hashes[i] = backupCodeHash(accountID, code)
	}

	pending := TOTPState{Secret: secretRaw}
	used := [][32]byte{}
	generatedAt := e.now().Unix()
	err = e.store.UpsertProfile(ctx, accountID, ProfilePatch{
		TOTP:                   &pending,
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

	if label == "" {
		label = accountID
	}

	e.metricInc(MetricEnrollStarted)
	e.emitAudit(ctx, auditEventEnrollStarted, true, accountID, MethodTOTP, nil, nil)

	return &TOTPEnrollment{
		Secret:          secretB32,
		ProvisioningURI: e.totp.ProvisionURI(secretB32, label),
		BackupCodes:     display,
	}, nil
}

// CompleteTOTPEnrollment confirms a pending enrollment by checking code
// against the stored secret. Only on success does the factor become enabled
// and the account flip to requiring MFA. A wrong code books a failed attempt
// against the lockout counter and returns [ErrCodeInvalid].
func (e *Engine) CompleteTOTPEnrollment(ctx context.Context, accountID, code string) error {
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
	if p == nil || len(p.TOTP.Secret) == 0 {
		return ErrEnrollmentNotStarted
	}
	if p.TOTP.Enabled {
		return ErrTOTPAlreadyEnabled
	}

	if remaining := e.lockRemaining(p.LockedUntil); remaining > 0 {
		e.metricInc(MetricVerifyRejectedLocked)
		lockedErr := &AccountLockedError{Remaining: remaining}
		e.emitAudit(ctx, auditEventVerifyLocked, false, accountID, MethodTOTP, lockedErr, nil)
		return lockedErr
	}

	ok, err := e.totp.VerifyCode(p.TOTP.Secret, code, e.now())
	if err != nil {
		return err
	}
	if !ok {
		e.metricInc(MetricEnrollFailed)
		if err := e.recordFailure(ctx, accountID, MethodTOTP); err != nil {
			return err
		}
		e.emitAudit(ctx, auditEventEnrollFailed, false, accountID, MethodTOTP, ErrCodeInvalid, nil)
		return ErrCodeInvalid
	}

	now := e.now()
	enabled := TOTPState{
		Secret:     p.TOTP.Secret,
		Enabled:    true,
		VerifiedAt: now.Unix(),
	}
	requireMFA := true
	err = e.store.UpsertProfile(ctx, accountID, ProfilePatch{
		TOTP:       &enabled,
		RequireMFA: &requireMFA,
	})
	if err != nil {
		return e.wrapStore(err)
	}
	if err := e.store.ClearFailures(ctx, accountID, now); err != nil {
		return e.wrapStore(err)
	}

	e.metricInc(MetricEnrollCompleted)
	e.emitAudit(ctx, auditEventEnrollCompleted, true, accountID, MethodTOTP, nil, nil)
	return nil
}
