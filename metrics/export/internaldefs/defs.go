package internaldefs

import (
	goMFA "github.com/MrEthical07/goMFA"
)

// CounterDef defines a public type used by goMFA APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goMFA.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goMFA APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goMFA.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the MFA engine.
var CounterDefs = []CounterDef{
	{ID: goMFA.MetricEnrollStarted, Name: "gomfa_enroll_started_total", Help: "Begun TOTP enrollments."},
	{ID: goMFA.MetricEnrollCompleted, Name: "gomfa_enroll_completed_total", Help: "Confirmed TOTP enrollments."},
	{ID: goMFA.MetricEnrollFailed, Name: "gomfa_enroll_failed_total", Help: "Failed enrollment confirmations."},
	{ID: goMFA.MetricTOTPSuccess, Name: "gomfa_totp_success_total", Help: "Successful TOTP verifications."},
	{ID: goMFA.MetricTOTPFailure, Name: "gomfa_totp_failure_total", Help: "Failed TOTP verifications."},
	{ID: goMFA.MetricBackupCodeUsed, Name: "gomfa_backup_code_used_total", Help: "Consumed backup codes."},
	{ID: goMFA.MetricBackupCodeFailed, Name: "gomfa_backup_code_failed_total", Help: "Rejected backup codes."},
	{ID: goMFA.MetricBackupCodeRegenerated, Name: "gomfa_backup_code_regenerated_total", Help: "Backup-code batch regenerations."},
	{ID: goMFA.MetricSMSCodeSent, Name: "gomfa_sms_code_sent_total", Help: "Codes handed to the SMS channel."},
	{ID: goMFA.MetricSMSSuccess, Name: "gomfa_sms_success_total", Help: "Successful SMS verifications."},
	{ID: goMFA.MetricSMSFailure, Name: "gomfa_sms_failure_total", Help: "Failed SMS verifications."},
	{ID: goMFA.MetricVerifyRejectedLocked, Name: "gomfa_verify_rejected_locked_total", Help: "Verification attempts rejected by an active lockout window."},
	{ID: goMFA.MetricAccountLocked, Name: "gomfa_account_locked_total", Help: "Lockout window engagements."},
	{ID: goMFA.MetricAccountUnlocked, Name: "gomfa_account_unlocked_total", Help: "Explicit account unlocks."},
	{ID: goMFA.MetricMFADisabled, Name: "gomfa_mfa_disabled_total", Help: "MFA-gated disable operations."},
	{ID: goMFA.MetricDeviceTrusted, Name: "gomfa_device_trusted_total", Help: "Trusted-device registrations."},
	{ID: goMFA.MetricDeviceTrustHit, Name: "gomfa_device_trust_hit_total", Help: "Trusted-device lookups that matched."},
	{ID: goMFA.MetricDeviceTrustMiss, Name: "gomfa_device_trust_miss_total", Help: "Trusted-device lookups that missed."},
	{ID: goMFA.MetricDeviceRemoved, Name: "gomfa_device_removed_total", Help: "Explicit trusted-device removals."},
}

// HistogramDefs is an exported constant or variable used by the MFA engine.
var HistogramDefs = []HistogramDef{
	{ID: goMFA.MetricVerifyLatency, Name: "gomfa_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the MFA engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the MFA engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
