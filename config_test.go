package goMFA

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.TOTP.Digits != 6 || cfg.TOTP.Period != 30 || cfg.TOTP.Algorithm != "SHA1" || cfg.TOTP.Skew != 2 {
		t.Fatalf("unexpected totp defaults: %+v", cfg.TOTP)
	}
	if cfg.BackupCodes.Count != 10 || cfg.BackupCodes.Length != 8 {
		t.Fatalf("unexpected backup code defaults: %+v", cfg.BackupCodes)
	}
	if cfg.Lockout.Threshold != 5 || cfg.Lockout.Duration != 30*time.Minute {
		t.Fatalf("unexpected lockout defaults: %+v", cfg.Lockout)
	}
	if cfg.TrustedDevices.MaxDevices != 5 {
		t.Fatalf("unexpected device defaults: %+v", cfg.TrustedDevices)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty issuer", func(c *Config) { c.TOTP.Issuer = "" }},
		{"digits too small", func(c *Config) { c.TOTP.Digits = 4 }},
		{"digits too large", func(c *Config) { c.TOTP.Digits = 12 }},
		{"zero period", func(c *Config) { c.TOTP.Period = 0 }},
		{"negative skew", func(c *Config) { c.TOTP.Skew = -1 }},
		{"bad algorithm", func(c *Config) { c.TOTP.Algorithm = "MD5" }},
		{"zero code count", func(c *Config) { c.BackupCodes.Count = 0 }},
		{"code too short", func(c *Config) { c.BackupCodes.Length = 3 }},
		{"zero threshold", func(c *Config) { c.Lockout.Threshold = 0 }},
		{"zero duration", func(c *Config) { c.Lockout.Duration = 0 }},
		{"zero device cap", func(c *Config) { c.TrustedDevices.MaxDevices = 0 }},
		{"bad sms digits", func(c *Config) { c.SMS.Enabled = true; c.SMS.OTPDigits = 4 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuilderRequiresStore(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected error without store or redis client")
	}
}

func TestBuilderRejectsInvalidConfig(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := defaultConfig()
	cfg.TOTP.Digits = 0

	if _, err := New().WithConfig(cfg).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestBuilderRequiresSMSChannelWhenEnabled(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	cfg := defaultConfig()
	cfg.SMS.Enabled = true

	if _, err := New().WithConfig(cfg).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error when sms enabled without channel")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	b := New().WithRedis(rdb)
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}
