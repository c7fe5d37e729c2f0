// Package middleware exposes an HTTP adapter for trusted-device
// enforcement built on top of goMFA.Engine.
//
// # Guard
//
//   - [RequireTrustedDevice] — lets requests from devices in the account's
//     trusted registry through and rejects everything else with 401, the
//     signal for the caller to run a full MFA challenge.
//
// The guard resolves the account via a caller-supplied [AccountResolver],
// reads the device ID from [DeviceIDHeader], calls Engine.IsDeviceTrusted,
// and injects the verified device ID into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement trust decisions itself — all decisions are delegated to
// Engine.IsDeviceTrusted.
package middleware
