package goMFA

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"strings"
)

const backupCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newBackupCodeBatch draws count codes of the given length, each character
// uniform over A-Z0-9, unique within the batch. Collisions are vanishingly
// rare at these lengths but regenerated anyway.
func newBackupCodeBatch(count, length int) ([]string, error) {
	if count <= 0 || length <= 0 {
		return nil, errors.New("invalid backup code batch parameters")
	}

	const maxRegenerations = 16
	seen := make(map[string]struct{}, count)
	batch := make([]string, 0, count)

	for attempts := 0; len(batch) < count; attempts++ {
		if attempts > count+maxRegenerations {
			return nil, errors.New("backup code batch generation stalled")
		}
		code, err := newBackupCode(length)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		batch = append(batch, code)
	}

	return batch, nil
}

// newBackupCode samples one code by rejection so every charset position is
// equally likely.
func newBackupCode(length int) (string, error) {
	limit := byte(256 - 256%len(backupCodeCharset))

	var b strings.Builder
	b.Grow(length)

	buf := make([]byte, length*2)
	for b.Len() < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, raw := range buf {
			if raw >= limit {
				continue
			}
			b.WriteByte(backupCodeCharset[int(raw)%len(backupCodeCharset)])
			if b.Len() == length {
				break
			}
		}
	}

	return b.String(), nil
}

// formatBackupCode renders a code for display in 4-character groups
// (ABCD-EFGH). Canonicalization reverses this.
func formatBackupCode(code string) string {
	if len(code) <= 4 {
		return code
	}

	var b strings.Builder
	b.Grow(len(code) + len(code)/4)
	for i, r := range code {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// canonicalizeBackupCode uppercases and strips the separators users paste in.
func canonicalizeBackupCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, "-", "")
	code = strings.ReplaceAll(code, " ", "")
	return code
}

// backupCodeHash binds the code to its account so identical codes on two
// accounts never share a stored hash.
func backupCodeHash(accountID, canonicalCode string) [32]byte {
	return sha256.Sum256([]byte(accountID + ":" + canonicalCode))
}
