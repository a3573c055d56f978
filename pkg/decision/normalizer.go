package decision

import (
	"log/slog"
	"strings"
)

// FreqTypeOutOfScope is the verdict frequency type that forces a BLOCK
// regardless of the engine's declared mode.
const FreqTypeOutOfScope = "OutOfScope"

// ModeNoOp and ModeBlock are the two engine modes with a fixed mapping;
// every other mode normalizes to GUIDE.
const (
	ModeNoOp  = "no-op"
	ModeBlock = "block"
)

// Normalizer maps free-form decision-engine output onto the closed
// State vocabulary. It is stateless; a single instance is shared by
// all request handlers.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer that logs reconciliation
// mismatches through the given logger. A nil logger falls back to
// slog.Default.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger: logger.With("component", "decision_normalizer"),
	}
}

// Normalize derives the decision state from the verdict signals, in
// priority order:
//
//  1. freqType "OutOfScope" forces BLOCK.
//  2. A scenario containing "out_of_scope" or "crisis" (case-insensitive
//     substring) forces BLOCK.
//  3. Otherwise the mode maps directly: "no-op" is ALLOW, "block" is
//     BLOCK, anything else is GUIDE.
func (n *Normalizer) Normalize(mode, freqType, scenario string) State {
	if freqType == FreqTypeOutOfScope {
		return StateBlock
	}

	lowered := strings.ToLower(scenario)
	if strings.Contains(lowered, "out_of_scope") || strings.Contains(lowered, "crisis") {
		return StateBlock
	}

	switch mode {
	case ModeNoOp:
		return StateAllow
	case ModeBlock:
		return StateBlock
	default:
		return StateGuide
	}
}

// Reconcile compares the normalized state against a state the engine
// asserted inside its own metrics. The computed value is always
// authoritative; a disagreement is logged as a warning so a buggy or
// compromised engine cannot soften the audit trail silently. An empty
// asserted value means the engine asserted nothing and is not a
// mismatch.
func (n *Normalizer) Reconcile(computed State, asserted string) State {
	if asserted != "" && asserted != string(computed) {
		n.logger.Warn("decision state mismatch, keeping computed value",
			"computed", string(computed),
			"asserted", asserted)
	}
	return computed
}
