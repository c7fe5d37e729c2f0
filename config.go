package goMFA

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by goMFA APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	TOTP           TOTPConfig
	BackupCodes    BackupCodeConfig
	Lockout        LockoutConfig
	TrustedDevices TrustedDeviceConfig
	SMS            SMSConfig
	Audit          AuditConfig
	Metrics        MetricsConfig
	Store          StoreConfig
}

/*
====================================
TOTP CONFIG
====================================
*/

// TOTPConfig defines a public type used by goMFA APIs.
//
// TOTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TOTPConfig struct {
	Issuer    string
	Digits    int
	Period    int
	Algorithm string // "SHA1" (default), "SHA256", "SHA512"
	Skew      int    // accepted steps either side of now
}

/*
====================================
BACKUP CODE CONFIG
====================================
*/

// BackupCodeConfig defines a public type used by goMFA APIs.
//
// BackupCodeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BackupCodeConfig struct {
	Count  int
	Length int
}

/*
====================================
LOCKOUT CONFIG
====================================
*/

// LockoutConfig defines a public type used by goMFA APIs.
//
// LockoutConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutConfig struct {
	Threshold int
	Duration  time.Duration
}

// TrustedDeviceConfig defines a public type used by goMFA APIs.
//
// TrustedDeviceConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TrustedDeviceConfig struct {
	MaxDevices int
}

// SMSConfig defines a public type used by goMFA APIs.
//
// SMSConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SMSConfig struct {
	Enabled   bool
	OTPDigits int
}

// AuditConfig defines a public type used by goMFA APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goMFA APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// StoreConfig defines a public type used by goMFA APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	RedisPrefix string
}

// DefaultConfig returns the documented default configuration: 6-digit SHA1
// TOTP over 30-second steps with a two-step skew window, ten 8-character
// backup codes, a 5-attempt 30-minute lockout, and five trusted devices.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		TOTP: TOTPConfig{
			Issuer:    "goMFA",
			Digits:    6,
			Period:    30,
			Algorithm: "SHA1",
			Skew:      2,
		},
		BackupCodes: BackupCodeConfig{
			Count:  10,
			Length: 8,
		},
		Lockout: LockoutConfig{
			Threshold: 5,
			Duration:  30 * time.Minute,
		},
		TrustedDevices: TrustedDeviceConfig{
			MaxDevices: 5,
		},
		SMS: SMSConfig{
			Enabled:   false,
			OTPDigits: 6,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Store: StoreConfig{
			RedisPrefix: "amp",
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.TOTP.Issuer == "" {
		return errors.New("totp issuer required")
	}
	if c.TOTP.Digits < 6 || c.TOTP.Digits > 10 {
		return errors.New("totp digits must be between 6 and 10")
	}
	if c.TOTP.Period <= 0 {
		return errors.New("totp period must be positive")
	}
	if c.TOTP.Skew < 0 || c.TOTP.Skew > 10 {
		return errors.New("totp skew must be between 0 and 10")
	}
	switch strings.ToUpper(c.TOTP.Algorithm) {
	case "", "SHA1", "SHA256", "SHA512":
	default:
		return errors.New("unsupported totp algorithm")
	}
	if c.BackupCodes.Count <= 0 || c.BackupCodes.Count > 64 {
		return errors.New("backup code count must be between 1 and 64")
	}
	if c.BackupCodes.Length < 6 || c.BackupCodes.Length > 32 {
		return errors.New("backup code length must be between 6 and 32")
	}
	if c.Lockout.Threshold <= 0 {
		return errors.New("lockout threshold must be positive")
	}
	if c.Lockout.Duration <= 0 {
		return errors.New("lockout duration must be positive")
	}
	if c.TrustedDevices.MaxDevices <= 0 {
		return errors.New("trusted device capacity must be positive")
	}
	if c.SMS.Enabled && (c.SMS.OTPDigits < 6 || c.SMS.OTPDigits > 10) {
		return errors.New("sms otp digits must be between 6 and 10")
	}
	return nil
}
