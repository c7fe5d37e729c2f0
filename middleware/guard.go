package middleware

import (
	"context"
	"net/http"

	goMFA "github.com/MrEthical07/goMFA"
)

// DeviceIDHeader is the request header carrying the trusted-device
// identifier issued by [goMFA.Engine.AddTrustedDevice].
const DeviceIDHeader = "X-Device-ID"

type trustedDeviceContextKey struct{}

// TrustedDeviceFromContext returns the device ID that passed the
// [RequireTrustedDevice] check for this request.
func TrustedDeviceFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(trustedDeviceContextKey{}).(string)
	return id, ok
}

// AccountResolver extracts the account ID for a request, typically from a
// session cookie or an upstream auth layer.
type AccountResolver func(r *http.Request) (string, bool)

// RequireTrustedDevice rejects requests whose device is not in the
// account's trusted-device registry. A passing request has its device ID
// injected into the context and its registry recency refreshed.
//
// Requests without a resolvable account or without a device header are
// rejected with 401 so callers fall back to a full MFA challenge.
func RequireTrustedDevice(engine *goMFA.Engine, resolve AccountResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil || resolve == nil {
				http.Error(w, "mfa required", http.StatusUnauthorized)
				return
			}

			accountID, ok := resolve(r)
			if !ok {
				http.Error(w, "mfa required", http.StatusUnauthorized)
				return
			}

			deviceID := r.Header.Get(DeviceIDHeader)
			if deviceID == "" {
				http.Error(w, "mfa required", http.StatusUnauthorized)
				return
			}

			trusted, err := engine.IsDeviceTrusted(r.Context(), accountID, deviceID)
			if err != nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if !trusted {
				http.Error(w, "mfa required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), trustedDeviceContextKey{}, deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
