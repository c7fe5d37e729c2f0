package profile

// Profile is the canonical per-account MFA record. One row per account,
// keyed by the external account identifier; the store enforces upsert
// semantics. Timestamps are unix seconds, zero meaning unset.
type Profile struct {
	AccountID string

	TOTP       TOTPState
	SMS        ChannelState
	Email      ChannelState
	RequireMFA bool

	// BackupCodeHashes is the live batch, generated together; plaintext is
	// never persisted. UsedCodeHashes is the consumed subset.
	BackupCodeHashes       [][32]byte
	UsedCodeHashes         [][32]byte
	BackupCodesGeneratedAt int64

	TrustedDevices []TrustedDevice

	FailedAttempts uint32
	LockedUntil    int64
	LastSuccessAt  int64
}

// TOTPState holds the TOTP factor. Secret is set while enrollment is pending
// (Enabled false) and becomes immutable once Enabled flips true.
type TOTPState struct {
	Secret     []byte
	Enabled    bool
	VerifiedAt int64
}

// ChannelState is the contract-only shape for SMS and email factors.
type ChannelState struct {
	Enabled    bool
	VerifiedAt int64
}

// TrustedDevice is one entry of the bounded recency-ordered device registry.
type TrustedDevice struct {
	ID         string
	Label      string
	AddedAt    int64
	LastUsedAt int64
}

// LockState is the outcome of an atomic failure recording.
type LockState struct {
	Attempts    uint32
	LockedUntil int64
	JustLocked  bool
}

// Patch is a partial update; only non-nil fields are applied.
type Patch struct {
	TOTP                   *TOTPState
	SMS                    *ChannelState
	Email                  *ChannelState
	RequireMFA             *bool
	BackupCodeHashes       *[][32]byte
	UsedCodeHashes         *[][32]byte
	BackupCodesGeneratedAt *int64
	TrustedDevices         *[]TrustedDevice
	FailedAttempts         *uint32
	LockedUntil            *int64
	LastSuccessAt          *int64
}

// Apply copies the set fields of patch onto p.
func (p *Profile) Apply(patch Patch) {
	if patch.TOTP != nil {
		p.TOTP = *patch.TOTP
	}
	if patch.SMS != nil {
		p.SMS = *patch.SMS
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.RequireMFA != nil {
		p.RequireMFA = *patch.RequireMFA
	}
	if patch.BackupCodeHashes != nil {
		p.BackupCodeHashes = cloneHashes(*patch.BackupCodeHashes)
	}
	if patch.UsedCodeHashes != nil {
		p.UsedCodeHashes = cloneHashes(*patch.UsedCodeHashes)
	}
	if patch.BackupCodesGeneratedAt != nil {
		p.BackupCodesGeneratedAt = *patch.BackupCodesGeneratedAt
	}
	if patch.TrustedDevices != nil {
		p.TrustedDevices = cloneDevices(*patch.TrustedDevices)
	}
	if patch.FailedAttempts != nil {
		p.FailedAttempts = *patch.FailedAttempts
	}
	if patch.LockedUntil != nil {
		p.LockedUntil = *patch.LockedUntil
	}
	if patch.LastSuccessAt != nil {
		p.LastSuccessAt = *patch.LastSuccessAt
	}
}

// Clone returns a deep copy safe to hand to callers.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	out.TOTP.Secret = append([]byte(nil), p.TOTP.Secret...)
	out.BackupCodeHashes = cloneHashes(p.BackupCodeHashes)
	out.UsedCodeHashes = cloneHashes(p.UsedCodeHashes)
	out.TrustedDevices = cloneDevices(p.TrustedDevices)
	return &out
}

// HasBackupCode reports membership of hash in the live batch.
func (p *Profile) HasBackupCode(hash [32]byte) bool {
	for _, h := range p.BackupCodeHashes {
		if h == hash {
			return true
		}
	}
	return false
}

// IsCodeUsed reports whether hash has already been consumed.
func (p *Profile) IsCodeUsed(hash [32]byte) bool {
	for _, h := range p.UsedCodeHashes {
		if h == hash {
			return true
		}
	}
	return false
}

func cloneHashes(in [][32]byte) [][32]byte {
	if len(in) == 0 {
		return nil
	}
	out := make([][32]byte, len(in))
	copy(out, in)
	return out
}

func cloneDevices(in []TrustedDevice) []TrustedDevice {
	if len(in) == 0 {
		return nil
	}
	out := make([]TrustedDevice, len(in))
	copy(out, in)
	return out
}
