// Package goMFA provides the multi-factor authentication core used by an
// authentication service: TOTP enrollment and verification, single-use backup
// codes, per-account lockout, and a bounded trusted-device registry.
//
// The package is a library, not a service. It defines no wire protocol and
// issues no sessions; the caller owns routing, session issuance, and
// user-facing messaging. All durable state lives in a [ProfileStore]
// collaborator — a Redis-backed implementation is wired automatically by
// [Builder.WithRedis], and callers may supply their own.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goMFA is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (MFAProfile, MetricsSnapshot, AuditEvent). Record encoding,
// store transactions, and audit dispatch live under internal/ and are never
// exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, store encodings, or plaintext backup codes beyond
//     the single enrollment response that mints them.
//   - Schedule background unlock jobs: lockout expiry is evaluated lazily by
//     comparing the stored deadline against the clock at the next attempt.
//   - Retry store outages; [ErrStoreUnavailable] propagates and the caller
//     owns retry policy.
package goMFA
