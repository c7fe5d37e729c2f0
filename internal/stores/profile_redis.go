package stores

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goMFA/internal/profile"
)

var (
	// ErrProfileBackend indicates the Redis backend is unreachable or the
	// stored record is unreadable.
	ErrProfileBackend = errors.New("mfa profile backend unavailable")
	// ErrProfileContention indicates a mutation kept losing optimistic
	// transactions and gave up.
	ErrProfileContention = errors.New("mfa profile update contention")
)

const mutateMaxRetries = 4

// RedisProfileStore persists one MFA profile record per account.
type RedisProfileStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisProfileStore creates a profile store. prefix defaults to "amp".
func NewRedisProfileStore(redisClient redis.UniversalClient, prefix string) *RedisProfileStore {
	if prefix == "" {
		prefix = "amp"
	}
	return &RedisProfileStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RedisProfileStore) key(accountID string) string {
	return s.prefix + ":" + accountID
}

// ReadProfile returns the stored profile, or nil when the account has none.
func (s *RedisProfileStore) ReadProfile(ctx context.Context, accountID string) (*profile.Profile, error) {
	data, err := s.redis.Get(ctx, s.key(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrProfileBackend, err)
	}

	p, err := profile.Decode(accountID, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileBackend, err)
	}
	return p, nil
}

// UpsertProfile applies a partial update, creating the row when absent.
func (s *RedisProfileStore) UpsertProfile(ctx context.Context, accountID string, patch profile.Patch) error {
	return s.mutate(ctx, accountID, true, func(p *profile.Profile) (bool, error) {
		p.Apply(patch)
		return true, nil
	})
}

// ConsumeBackupCode atomically marks hash as used iff it belongs to the live
// batch and has not been consumed. Exactly one of two concurrent attempts
// with the same code observes true.
func (s *RedisProfileStore) ConsumeBackupCode(ctx context.Context, accountID string, hash [32]byte) (bool, error) {
	consumed := false
	err := s.mutate(ctx, accountID, false, func(p *profile.Profile) (bool, error) {
		consumed = false
		if !p.HasBackupCode(hash) || p.IsCodeUsed(hash) {
			return false, nil
		}
		p.UsedCodeHashes = append(p.UsedCodeHashes, hash)
		consumed = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return consumed, nil
}

// RecordFailure increments the failure counter and, when the new count meets
// threshold with no lock currently active, stamps a lock deadline. An active
// lock is never extended. Missing rows are a no-op.
func (s *RedisProfileStore) RecordFailure(
	ctx context.Context,
	accountID string,
	threshold int,
	lockFor time.Duration,
	now time.Time,
) (profile.LockState, error) {
	var state profile.LockState
	err := s.mutate(ctx, accountID, false, func(p *profile.Profile) (bool, error) {
		state = profile.LockState{}
		p.FailedAttempts++
		if int(p.FailedAttempts) >= threshold && p.LockedUntil <= now.Unix() {
			p.LockedUntil = now.Add(lockFor).Unix()
			state.JustLocked = true
		}
		state.Attempts = p.FailedAttempts
		state.LockedUntil = p.LockedUntil
		return true, nil
	})
	if err != nil {
		return profile.LockState{}, err
	}
	return state, nil
}

// ClearFailures resets the counter, drops any lock, and stamps the success
// time. Missing rows are a no-op.
func (s *RedisProfileStore) ClearFailures(ctx context.Context, accountID string, now time.Time) error {
	return s.mutate(ctx, accountID, false, func(p *profile.Profile) (bool, error) {
		if p.FailedAttempts == 0 && p.LockedUntil == 0 && p.LastSuccessAt == now.Unix() {
			return false, nil
		}
		p.FailedAttempts = 0
		p.LockedUntil = 0
		p.LastSuccessAt = now.Unix()
		return true, nil
	})
}

// PutTrustedDevice appends device and truncates the registry to capacity by
// descending LastUsedAt, evicting the least recently used entries.
func (s *RedisProfileStore) PutTrustedDevice(
	ctx context.Context,
	accountID string,
	device profile.TrustedDevice,
	capacity int,
) error {
	return s.mutate(ctx, accountID, true, func(p *profile.Profile) (bool, error) {
		p.TrustedDevices = append(p.TrustedDevices, device)
		if len(p.TrustedDevices) > capacity {
			sort.SliceStable(p.TrustedDevices, func(i, j int) bool {
				return p.TrustedDevices[i].LastUsedAt > p.TrustedDevices[j].LastUsedAt
			})
			p.TrustedDevices = p.TrustedDevices[:capacity]
		}
		return true, nil
	})
}

// TouchTrustedDevice slides LastUsedAt for deviceID and reports whether the
// device was present. Absence is not an error.
func (s *RedisProfileStore) TouchTrustedDevice(
	ctx context.Context,
	accountID, deviceID string,
	now time.Time,
) (bool, error) {
	found := false
	err := s.mutate(ctx, accountID, false, func(p *profile.Profile) (bool, error) {
		found = false
		for i := range p.TrustedDevices {
			if p.TrustedDevices[i].ID == deviceID {
				p.TrustedDevices[i].LastUsedAt = now.Unix()
				found = true
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// RemoveTrustedDevice drops deviceID from the registry and reports whether
// the device was present.
func (s *RedisProfileStore) RemoveTrustedDevice(ctx context.Context, accountID, deviceID string) (bool, error) {
	removed := false
	err := s.mutate(ctx, accountID, false, func(p *profile.Profile) (bool, error) {
		removed = false
		for i := range p.TrustedDevices {
			if p.TrustedDevices[i].ID == deviceID {
				p.TrustedDevices = append(p.TrustedDevices[:i], p.TrustedDevices[i+1:]...)
				removed = true
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// mutate runs fn against the current record under an optimistic WATCH
// transaction. fn returns whether the record should be written back. When
// createIfMissing is false and the row is absent, fn is not called.
func (s *RedisProfileStore) mutate(
	ctx context.Context,
	accountID string,
	createIfMissing bool,
	fn func(*profile.Profile) (bool, error),
) error {
	key := s.key(accountID)

	for i := 0; i < mutateMaxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			var p *profile.Profile

			data, err := tx.Get(ctx, key).Bytes()
			switch {
			case err == nil:
				p, err = profile.Decode(accountID, data)
				if err != nil {
					return err
				}
			case errors.Is(err, redis.Nil):
				if !createIfMissing {
					return nil
				}
				p = &profile.Profile{AccountID: accountID}
			default:
				return err
			}

			dirty, err := fn(p)
			if err != nil || !dirty {
				return err
			}

			encoded, err := profile.Encode(p)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, 0)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrProfileBackend, err)
		}
		return nil
	}

	return ErrProfileContention
}
