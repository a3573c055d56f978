package license

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// keyPrefix is the required prefix of every issued license key.
const keyPrefix = "CONTINUUM-"

// ErrMissingPublicKey is returned when no verification key is
// configured.
var ErrMissingPublicKey = errors.New("license public key is not configured")

// Claims is the payload embedded in a signed license key.
type Claims struct {
	Iss         string `json:"iss"`
	Sub         string `json:"sub"`
	Licensee    string `json:"licensee"`
	Tier        string `json:"tier"`
	Exp         int64  `json:"exp,omitempty"`
	MaxAnalyses int64  `json:"max_analyses,omitempty"`
	Iat         int64  `json:"iat"`
	Jti         string `json:"jti"`
}

// UsageReader reads the cumulative analysis counter the quota check
// runs against. Reads must be cheap; the validator calls this on every
// synchronous check.
type UsageReader interface {
	Count(ctx context.Context) (int64, error)
}

// Validator checks a license key against its verification key, its
// expiry and the usage counter. Validation is idempotent and never
// panics; a failure to reach the usage backend produces an INVALID
// status with a "validation_exception:" reason instead of an error
// crossing into request handling.
type Validator struct {
	key       string
	publicKey ed25519.PublicKey
	usage     UsageReader
	logger    *slog.Logger
	now       func() time.Time
}

// NewValidator creates a Validator. The public key is the issuer's
// base64-encoded Ed25519 verification key.
func NewValidator(key, publicKeyB64 string, usage UsageReader, logger *slog.Logger) (*Validator, error) {
	pk, err := decodePublicKey(publicKeyB64)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		key:       key,
		publicKey: pk,
		usage:     usage,
		logger:    logger.With("component", "license_validator"),
		now:       time.Now,
	}, nil
}

// Check runs one full validation: verify the signed key, then the
// expiry, then the quota against the usage counter. It always returns
// a Status, never an error.
func (v *Validator) Check(ctx context.Context) Status {
	var usageCount int64
	if v.usage != nil {
		count, err := v.usage.Count(ctx)
		if err != nil {
			return Status{
				State:     StateInvalid,
				Reason:    fmt.Sprintf("validation_exception:%v", err),
				CheckedAt: v.now(),
			}
		}
		usageCount = count
	}
	return v.Validate(usageCount)
}

// Validate is the pure core of a check: given the current usage count,
// it verifies the configured key and claims and returns the resulting
// status.
func (v *Validator) Validate(usageCount int64) Status {
	now := v.now()
	status := Status{
		UsageCount: usageCount,
		CheckedAt:  now,
	}

	claims, err := VerifyKey(v.key, v.publicKey)
	if err != nil {
		status.State = StateInvalid
		status.Reason = err.Error()
		return status
	}

	status.Licensee = claims.Licensee
	status.Tier = claims.Tier
	status.MaxAnalyses = claims.MaxAnalyses
	if claims.Exp > 0 {
		status.ExpiresAt = time.Unix(claims.Exp, 0).UTC()
		if !now.Before(status.ExpiresAt) {
			status.State = StateInvalid
			status.Reason = fmt.Sprintf("license expired at %s", status.ExpiresAt.Format(time.RFC3339))
			return status
		}
	}

	if claims.MaxAnalyses > 0 && usageCount >= claims.MaxAnalyses {
		status.State = StateInvalid
		status.Reason = fmt.Sprintf("usage quota exhausted: %d of %d analyses", usageCount, claims.MaxAnalyses)
		return status
	}

	status.State = StateValid
	return status
}

// VerifyKey performs offline verification of a signed license key and
// returns its claims.
func VerifyKey(key string, publicKey ed25519.PublicKey) (*Claims, error) {
	if !strings.HasPrefix(key, keyPrefix) {
		return nil, fmt.Errorf("license key missing required prefix %q", keyPrefix)
	}

	payloadAndSig, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(key, keyPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode license payload: %w", err)
	}
	if len(payloadAndSig) <= ed25519.SignatureSize {
		return nil, errors.New("license payload too short")
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key length: %d", len(publicKey))
	}

	payload := payloadAndSig[:len(payloadAndSig)-ed25519.SignatureSize]
	sig := payloadAndSig[len(payloadAndSig)-ed25519.SignatureSize:]

	if !ed25519.Verify(publicKey, payload, sig) {
		return nil, errors.New("license signature verification failed")
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("decode license claims: %w", err)
	}
	if claims.Iss != "continuum-hq" || claims.Sub != "license" {
		return nil, errors.New("license claims issuer/subject mismatch")
	}

	return &claims, nil
}

func decodePublicKey(v string) (ed25519.PublicKey, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, ErrMissingPublicKey
	}
	decoders := []func(string) ([]byte, error){
		base64.StdEncoding.DecodeString,
		base64.RawStdEncoding.DecodeString,
		base64.URLEncoding.DecodeString,
		base64.RawURLEncoding.DecodeString,
	}
	for _, dec := range decoders {
		if b, err := dec(v); err == nil {
			return ed25519.PublicKey(b), nil
		}
	}
	return nil, errors.New("unable to decode public key: invalid base64")
}
