package goMFA

import (
	"context"
	"encoding/base32"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

type fakeSMSChannel struct {
	mu       sync.Mutex
	pending  map[string]string
	sent     int
	sendErr  error
	fetchErr error
}

func newFakeSMSChannel() *fakeSMSChannel {
	return &fakeSMSChannel{pending: make(map[string]string)}
}

func (c *fakeSMSChannel) SendCode(_ context.Context, accountID, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.pending[accountID] = code
	c.sent++
	return nil
}

func (c *fakeSMSChannel) GetPendingCode(_ context.Context, accountID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchErr != nil {
		return "", c.fetchErr
	}
	return c.pending[accountID], nil
}

func (c *fakeSMSChannel) Sent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

func (c *fakeSMSChannel) Pending(accountID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[accountID]
}

// newTestEngine builds an engine on miniredis with a fake SMS channel.
// mutate may adjust the config before Build.
func newTestEngine(t *testing.T, mutate ...func(*Config)) (*Engine, *fakeSMSChannel, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)

	cfg := defaultConfig()
	cfg.SMS.Enabled = true
	for _, fn := range mutate {
		fn(&cfg)
	}

	sms := newFakeSMSChannel()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithSMSChannel(sms).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}
	// Builder-enabled flags must not leak into disabled test configs.
	engine.config.SMS = cfg.SMS

	return engine, sms, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func codeForNow(t *testing.T, secret string, cfg TOTPConfig) string {
	t.Helper()
	return codeForOffset(t, secret, cfg, 0)
}

func codeForOffset(t *testing.T, secret string, cfg TOTPConfig, offset int64) string {
	t.Helper()
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(secret))
	if err != nil {
		t.Fatalf("decode secret failed: %v", err)
	}
	counter := (time.Now().Unix() / int64(cfg.Period)) + offset
	code, err := hotpCode(key, counter, cfg.Digits, cfg.Algorithm)
	if err != nil {
		t.Fatalf("hotpCode failed: %v", err)
	}
	return code
}

// enrollAndConfirm runs the full enrollment handshake for accountID and
// returns the enrollment payload with its plaintext backup codes.
func enrollAndConfirm(t *testing.T, engine *Engine, accountID string) *TOTPEnrollment {
	t.Helper()

	enrollment, err := engine.BeginTOTPEnrollment(context.Background(), accountID, accountID+"@example.com")
	if err != nil {
		t.Fatalf("BeginTOTPEnrollment failed: %v", err)
	}

	code := codeForNow(t, enrollment.Secret, engine.config.TOTP)
	if err := engine.CompleteTOTPEnrollment(context.Background(), accountID, code); err != nil {
		t.Fatalf("CompleteTOTPEnrollment failed: %v", err)
	}
	return enrollment
}

// failedAttempts reads accountID's current failure counter.
func failedAttempts(t *testing.T, engine *Engine, accountID string) int {
	t.Helper()

	p, err := engine.Profile(context.Background(), accountID)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p == nil {
		t.Fatalf("expected profile for %s", accountID)
	}
	return int(p.FailedAttempts)
}

// advanceClock shifts the engine's clock by d without touching real time.
func advanceClock(engine *Engine, d time.Duration) {
	base := engine.now
	engine.now = func() time.Time {
		return base().Add(d)
	}
}
