// Package stores provides the Redis-backed credential store for per-account
// MFA profiles.
//
// # Design
//
// Each account maps to one versioned, binary-encoded record in Redis.
// Mutation operations (UpsertProfile, ConsumeBackupCode, RecordFailure,
// device updates) use WATCH/MULTI optimistic transactions with automatic
// retry on contention, so concurrent verification attempts against the same
// account serialize on the row. Backup-code consumption is a strict
// test-and-set: a code already present in the used set never consumes twice.
//
// # Architecture boundaries
//
// This package owns persistence and concurrency control for profile records.
// It does NOT generate codes, evaluate lockout policy beyond the atomic
// counter transition, or make verification decisions — those belong to the
// Engine in the root package.
//
// # What this package must NOT do
//
//   - Import goMFA or any sibling internal package other than profile.
//   - Store plaintext backup codes or expose record encoding details.
package stores
