package goMFA

import (
	"context"
	"time"
)

const (
	auditEventEnrollStarted     = "mfa.enroll.started"
	auditEventEnrollCompleted   = "mfa.enroll.completed"
	auditEventEnrollFailed      = "mfa.enroll.failed"
	auditEventVerifySuccess     = "mfa.verify.success"
	auditEventVerifyFailure     = "mfa.verify.failure"
	auditEventVerifyLocked      = "mfa.verify.locked"
	auditEventAccountLocked     = "mfa.lockout.engaged"
	auditEventAccountUnlocked   = "mfa.lockout.cleared"
	auditEventBackupRegenerated = "mfa.backup_codes.regenerated"
	auditEventSMSCodeSent       = "mfa.sms.sent"
	auditEventDisabled          = "mfa.disabled"
	auditEventDeviceTrusted     = "mfa.device.trusted"
	auditEventDeviceTouched     = "mfa.device.touched"
	auditEventDeviceRemoved     = "mfa.device.removed"
)

// emitAudit builds and dispatches one audit event. metaFn is invoked only
// when a dispatcher is attached, so callers can defer map allocation.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	method Method,
	err error,
	metaFn func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		AccountID: accountID,
		Method:    string(method),
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metaFn != nil {
		event.Metadata = metaFn()
	}

	e.audit.Emit(ctx, event)
}
