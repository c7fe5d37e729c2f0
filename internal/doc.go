// Package internal contains helper utilities that are intentionally private to goMFA,
// including secure numeric OTP generation for the SMS channel.
//
// # Sub-packages
//
//   - profile — the per-account MFA record, its patch semantics, and the
//     versioned binary codec used for Redis persistence
//   - stores — the Redis-backed ProfileStore implementation with
//     optimistic per-record transactions
//
// # What this package must NOT do
//
//   - Export types that appear in the public goMFA API.
//   - Be imported by any package outside the goMFA module.
package internal
