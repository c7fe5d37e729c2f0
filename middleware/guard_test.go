package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goMFA "github.com/MrEthical07/goMFA"
)

func newGuardTestEngine(t *testing.T) (*goMFA.Engine, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	engine, err := goMFA.New().WithRedis(rdb).Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func headerResolver(r *http.Request) (string, bool) {
	account := r.Header.Get("X-Account-ID")
	return account, account != ""
}

func TestRequireTrustedDeviceAllowsRegisteredDevice(t *testing.T) {
	engine, done := newGuardTestEngine(t)
	defer done()

	ctx := context.Background()
	if _, err := engine.BeginTOTPEnrollment(ctx, "u1", ""); err != nil {
		t.Fatalf("BeginTOTPEnrollment failed: %v", err)
	}
	deviceID, err := engine.AddTrustedDevice(ctx, "u1", goMFA.DeviceInfo{Label: "laptop"})
	if err != nil {
		t.Fatalf("AddTrustedDevice failed: %v", err)
	}

	var seenDevice string
	handler := RequireTrustedDevice(engine, headerResolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenDevice, _ = TrustedDeviceFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Account-ID", "u1")
	req.Header.Set(DeviceIDHeader, deviceID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seenDevice != deviceID {
		t.Fatalf("expected device %q in context, got %q", deviceID, seenDevice)
	}
}

func TestRequireTrustedDeviceRejectsUnknownDevice(t *testing.T) {
	engine, done := newGuardTestEngine(t)
	defer done()

	if _, err := engine.BeginTOTPEnrollment(context.Background(), "u1", ""); err != nil {
		t.Fatalf("BeginTOTPEnrollment failed: %v", err)
	}

	handler := RequireTrustedDevice(engine, headerResolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Account-ID", "u1")
	req.Header.Set(DeviceIDHeader, "not-a-device")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireTrustedDeviceRejectsMissingAccountOrHeader(t *testing.T) {
	engine, done := newGuardTestEngine(t)
	defer done()

	handler := RequireTrustedDevice(engine, headerResolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	// No resolvable account.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(DeviceIDHeader, "dev-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without account, got %d", rec.Code)
	}

	// No device header.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-Account-ID", "u1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without device header, got %d", rec.Code)
	}
}
