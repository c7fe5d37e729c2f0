package profile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	recordVersion1 = 1

	maxSecretLen = 1024
	maxListLen   = 4096
)

var (
	ErrRecordVersion  = errors.New("unknown mfa profile record version")
	ErrRecordTooLarge = errors.New("mfa profile record field exceeds limit")
)

// Encode serializes p into the versioned binary record stored in Redis.
// The account identifier is the storage key and is not part of the record.
func Encode(p *Profile) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(recordVersion1)

	if err := writeBytes(&buf, p.TOTP.Secret); err != nil {
		return nil, err
	}
	writeBool(&buf, p.TOTP.Enabled)
	writeInt64(&buf, p.TOTP.VerifiedAt)

	writeBool(&buf, p.SMS.Enabled)
	writeInt64(&buf, p.SMS.VerifiedAt)
	writeBool(&buf, p.Email.Enabled)
	writeInt64(&buf, p.Email.VerifiedAt)

	writeBool(&buf, p.RequireMFA)
	writeInt64(&buf, p.BackupCodesGeneratedAt)
	binary.Write(&buf, binary.BigEndian, p.FailedAttempts)
	writeInt64(&buf, p.LockedUntil)
	writeInt64(&buf, p.LastSuccessAt)

	if err := writeHashes(&buf, p.BackupCodeHashes); err != nil {
		return nil, err
	}
	if err := writeHashes(&buf, p.UsedCodeHashes); err != nil {
		return nil, err
	}

	if len(p.TrustedDevices) > maxListLen {
		return nil, ErrRecordTooLarge
	}
	binary.Write(&buf, binary.BigEndian, uint16(len(p.TrustedDevices)))
	for _, d := range p.TrustedDevices {
		if err := writeString(&buf, d.ID); err != nil {
			return nil, err
		}
		if err := writeString(&buf, d.Label); err != nil {
			return nil, err
		}
		writeInt64(&buf, d.AddedAt)
		writeInt64(&buf, d.LastUsedAt)
	}

	return buf.Bytes(), nil
}

// Decode parses a record produced by Encode.
func Decode(accountID string, data []byte) (*Profile, error) {
	r := bytes.NewReader(data)

	version, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordVersion1 {
		return nil, ErrRecordVersion
	}

	p := &Profile{AccountID: accountID}

	if p.TOTP.Secret, err = readBytes(r); err != nil {
		return nil, err
	}
	if p.TOTP.Enabled, err = readBool(r); err != nil {
		return nil, err
	}
	if p.TOTP.VerifiedAt, err = readInt64(r); err != nil {
		return nil, err
	}

	if p.SMS.Enabled, err = readBool(r); err != nil {
		return nil, err
	}
	if p.SMS.VerifiedAt, err = readInt64(r); err != nil {
		return nil, err
	}
	if p.Email.Enabled, err = readBool(r); err != nil {
		return nil, err
	}
	if p.Email.VerifiedAt, err = readInt64(r); err != nil {
		return nil, err
	}

	if p.RequireMFA, err = readBool(r); err != nil {
		return nil, err
	}
	if p.BackupCodesGeneratedAt, err = readInt64(r); err != nil {
		return nil, err
	}
	if err = binary.Read(r, binary.BigEndian, &p.FailedAttempts); err != nil {
		return nil, err
	}
	if p.LockedUntil, err = readInt64(r); err != nil {
		return nil, err
	}
	if p.LastSuccessAt, err = readInt64(r); err != nil {
		return nil, err
	}

	if p.BackupCodeHashes, err = readHashes(r); err != nil {
		return nil, err
	}
	if p.UsedCodeHashes, err = readHashes(r); err != nil {
		return nil, err
	}

	var deviceCount uint16
	if err = binary.Read(r, binary.BigEndian, &deviceCount); err != nil {
		return nil, err
	}
	if deviceCount > 0 {
		p.TrustedDevices = make([]TrustedDevice, 0, deviceCount)
		for i := 0; i < int(deviceCount); i++ {
			var d TrustedDevice
			if d.ID, err = readString(r); err != nil {
				return nil, err
			}
			if d.Label, err = readString(r); err != nil {
				return nil, err
			}
			if d.AddedAt, err = readInt64(r); err != nil {
				return nil, err
			}
			if d.LastUsedAt, err = readInt64(r); err != nil {
				return nil, err
			}
			p.TrustedDevices = append(p.TrustedDevices, d)
		}
	}

	return p, nil
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
		return
	}
	buf.WriteByte(0)
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func writeInt64(buf *bytes.Buffer, v int64) {
	binary.Write(buf, binary.BigEndian, v)
}

func readInt64(r *bytes.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func writeBytes(buf *bytes.Buffer, v []byte) error {
	if len(v) > maxSecretLen {
		return ErrRecordTooLarge
	}
	binary.Write(buf, binary.BigEndian, uint16(len(v)))
	buf.Write(v)
	return nil
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeString(buf *bytes.Buffer, v string) error {
	if len(v) > 65535 {
		return ErrRecordTooLarge
	}
	binary.Write(buf, binary.BigEndian, uint16(len(v)))
	buf.WriteString(v)
	return nil
}

func readString(r *bytes.Reader) (string, error) {
	raw, err := readBytes(r)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func writeHashes(buf *bytes.Buffer, hashes [][32]byte) error {
	if len(hashes) > maxListLen {
		return ErrRecordTooLarge
	}
	binary.Write(buf, binary.BigEndian, uint16(len(hashes)))
	for _, h := range hashes {
		buf.Write(h[:])
	}
	return nil
}

func readHashes(r *bytes.Reader) ([][32]byte, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([][32]byte, n)
	for i := range out {
		if _, err := io.ReadFull(r, out[i][:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
