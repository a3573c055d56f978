package recorder

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestFingerprintText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		salt       string
		wantSHA    string
		wantLength int
		wantSalted bool
	}{
		{
			name:       "empty text unsalted",
			text:       "",
			salt:       "",
			wantSHA:    sha256Hex(""),
			wantLength: 0,
			wantSalted: false,
		},
		{
			name:       "empty text salted",
			text:       "",
			salt:       "pepper",
			wantSHA:    sha256Hex("pepper"),
			wantLength: 0,
			wantSalted: true,
		},
		{
			name:       "simple text unsalted",
			text:       "hello world",
			salt:       "",
			wantSHA:    sha256Hex("hello world"),
			wantLength: 11,
			wantSalted: false,
		},
		{
			name:       "simple text salted",
			text:       "hello world",
			salt:       "pepper",
			wantSHA:    sha256Hex("pepperhello world"),
			wantLength: 11,
			wantSalted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FingerprintText(tt.text, tt.salt)

			if got.SHA256 != tt.wantSHA {
				t.Errorf("SHA256 = %s, want %s", got.SHA256, tt.wantSHA)
			}
			if got.Length != tt.wantLength {
				t.Errorf("Length = %d, want %d", got.Length, tt.wantLength)
			}
			if got.Salted != tt.wantSalted {
				t.Errorf("Salted = %v, want %v", got.Salted, tt.wantSalted)
			}
		})
	}
}

func TestFingerprintText_Stable(t *testing.T) {
	a := FingerprintText("same input", "salt")
	b := FingerprintText("same input", "salt")

	if a != b {
		t.Errorf("fingerprints of identical input differ: %v vs %v", a, b)
	}
}

func TestFingerprintText_WhitespaceSensitive(t *testing.T) {
	// No normalization before hashing: trailing whitespace is a different
	// fingerprint.
	a := FingerprintText("input", "")
	b := FingerprintText("input ", "")

	if a.SHA256 == b.SHA256 {
		t.Error("whitespace variants produced identical hashes")
	}
	if a.Length == b.Length {
		t.Error("whitespace variants produced identical lengths")
	}
}

func TestFingerprintText_SaltChangesHash(t *testing.T) {
	a := FingerprintText("input", "salt-a")
	b := FingerprintText("input", "salt-b")

	if a.SHA256 == b.SHA256 {
		t.Error("different salts produced identical hashes")
	}
	if a.Length != b.Length {
		t.Error("salt must not affect length")
	}
}
