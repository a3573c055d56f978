package recorder

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is the one-way stand-in for text that must never be stored:
// a SHA-256 hex digest plus the original length in bytes.
type Fingerprint struct {
	SHA256 string
	Length int
	Salted bool
}

// FingerprintText computes the fingerprint of text under a process-wide
// salt. An empty salt is a valid unsalted mode. The input is hashed exactly
// as given: no trimming or normalization, so two inputs differing only by
// whitespace produce different fingerprints.
//
// There are no error conditions; the empty string fingerprints to a stable
// hash with length zero.
func FingerprintText(text, salt string) Fingerprint {
	h := sha256.New()
	if salt != "" {
		h.Write([]byte(salt))
	}
	h.Write([]byte(text))

	return Fingerprint{
		SHA256: hex.EncodeToString(h.Sum(nil)),
		Length: len(text),
		Salted: salt != "",
	}
}
