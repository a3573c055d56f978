package license

import (
	"fmt"
	"time"
)

// ValidationState is the outcome of one license check.
type ValidationState string

const (
	// StateUnchecked means no check has completed yet.
	StateUnchecked ValidationState = "UNCHECKED"

	// StateValid means the most recent check passed.
	StateValid ValidationState = "VALID"

	// StateInvalid means the most recent check failed; Reason explains
	// why.
	StateInvalid ValidationState = "INVALID"
)

// EnforcementMode controls what an invalid license does to request
// handling.
type EnforcementMode string

const (
	// ModeDegrade logs a warning on invalid license and keeps serving.
	ModeDegrade EnforcementMode = "degrade"

	// ModeStop rejects all requests while the license is invalid.
	ModeStop EnforcementMode = "stop"
)

// Valid reports whether m is a known enforcement mode.
func (m EnforcementMode) Valid() bool {
	return m == ModeDegrade || m == ModeStop
}

// Status is the result of a license check. It is replaced atomically
// as a whole value; readers never observe a partial update. Each check
// is authoritative for its moment, there is no hysteresis across
// checks.
type Status struct {
	// State is the validation outcome.
	State ValidationState `json:"state"`

	// Reason explains an INVALID state. Backend failures use the form
	// "validation_exception:<detail>".
	Reason string `json:"reason,omitempty"`

	// Licensee and Tier come from the verified license claims.
	Licensee string `json:"licensee,omitempty"`
	Tier     string `json:"tier,omitempty"`

	// ExpiresAt is the license expiry, zero when the license does not
	// expire.
	ExpiresAt time.Time `json:"expires_at,omitzero"`

	// UsageCount and MaxAnalyses describe quota consumption at check
	// time. MaxAnalyses zero means unlimited.
	UsageCount  int64 `json:"usage_count"`
	MaxAnalyses int64 `json:"max_analyses,omitempty"`

	// CheckedAt records when this check ran.
	CheckedAt time.Time `json:"checked_at,omitzero"`
}

// Valid reports whether the status represents a passing check.
func (s *Status) Valid() bool {
	return s.State == StateValid
}

// LicenseError is returned by the watchdog gate when an invalid
// license rejects a request in stop mode. It is a policy decision, not
// a degraded-service failure, and maps to 503 at the transport layer.
type LicenseError struct {
	Reason string
}

// Error implements the error interface.
func (e *LicenseError) Error() string {
	return fmt.Sprintf("license invalid: %s", e.Reason)
}

// NewLicenseError creates a LicenseError.
func NewLicenseError(reason string) *LicenseError {
	return &LicenseError{Reason: reason}
}
