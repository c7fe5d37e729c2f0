package goMFA

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goMFA/internal"
)

// RequestSMSCode mints a numeric one-time code and hands it to the SMS
// channel for delivery to accountID. The channel owns storage, expiry, and
// single-use of the pending code; [Engine.Verify] with [MethodSMS] later
// compares against what the channel surfaces.
func (e *Engine) RequestSMSCode(ctx context.Context, accountID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if accountID == "" {
		return ErrAccountIDRequired
	}
	if !e.config.SMS.Enabled || e.sms == nil {
		return ErrSMSChannelUnavailable
	}

	p, err := e.store.ReadProfile(ctx, accountID)
	if err != nil {
		return e.wrapStore(err)
	}
	if p == nil {
		return ErrMFANotConfigured
	}

	code, err := internal.NewOTP(e.config.SMS.OTPDigits)
	if err != nil {
		return err
	}

	if err := e.sms.SendCode(ctx, accountID, code); err != nil {
		return fmt.Errorf("%w: %v", ErrSMSChannelUnavailable, err)
	}

	e.metricInc(MetricSMSCodeSent)
	e.emitAudit(ctx, auditEventSMSCodeSent, true, accountID, MethodSMS, nil, nil)
	return nil
}
