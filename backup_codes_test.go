package goMFA

import (
	"testing"
)

func TestBackupCodeBatchSizeAndCharset(t *testing.T) {
	batch, err := newBackupCodeBatch(10, 8)
	if err != nil {
		t.Fatalf("newBackupCodeBatch failed: %v", err)
	}
	if len(batch) != 10 {
		t.Fatalf("expected 10 codes, got %d", len(batch))
	}

	for _, code := range batch {
		if len(code) != 8 {
			t.Fatalf("expected length 8, got %q", code)
		}
		for i := 0; i < len(code); i++ {
			c := code[i]
			if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
				t.Fatalf("character outside charset in %q", code)
			}
		}
	}
}

func TestBackupCodeBatchUnique(t *testing.T) {
	batch, err := newBackupCodeBatch(64, 6)
	if err != nil {
		t.Fatalf("newBackupCodeBatch failed: %v", err)
	}

	seen := make(map[string]struct{}, len(batch))
	for _, code := range batch {
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = struct{}{}
	}
}

func TestBackupCodeBatchRejectsInvalidParams(t *testing.T) {
	if _, err := newBackupCodeBatch(0, 8); err == nil {
		t.Fatal("expected error for zero count")
	}
	if _, err := newBackupCodeBatch(10, 0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestFormatAndCanonicalizeRoundTrip(t *testing.T) {
	cases := []struct {
		raw     string
		display string
	}{
		{"ABCDEFGH", "ABCD-EFGH"},
		{"ABCD", "ABCD"},
		{"ABCDEFGHIJKL", "ABCD-EFGH-IJKL"},
	}

	for _, tc := range cases {
		if got := formatBackupCode(tc.raw); got != tc.display {
			t.Fatalf("format %q: expected %q, got %q", tc.raw, tc.display, got)
		}
		if got := canonicalizeBackupCode(tc.display); got != tc.raw {
			t.Fatalf("canonicalize %q: expected %q, got %q", tc.display, tc.raw, got)
		}
	}
}

func TestCanonicalizeHandlesUserInput(t *testing.T) {
	cases := map[string]string{
		" abcd-efgh ":  "ABCDEFGH",
		"ABCD EFGH":    "ABCDEFGH",
		"abcd efgh ":   "ABCDEFGH",
		"AB-CD-EF-GH":  "ABCDEFGH",
		"\tABCDEFGH\n": "ABCDEFGH",
	}

	for input, want := range cases {
		if got := canonicalizeBackupCode(input); got != want {
			t.Fatalf("canonicalize %q: expected %q, got %q", input, want, got)
		}
	}
}

func TestBackupCodeHashScopedByAccount(t *testing.T) {
	h1 := backupCodeHash("u1", "ABCDEFGH")
	h2 := backupCodeHash("u2", "ABCDEFGH")
	if h1 == h2 {
		t.Fatal("expected per-account hash domain separation")
	}
	if h1 != backupCodeHash("u1", "ABCDEFGH") {
		t.Fatal("expected deterministic hash")
	}
}
