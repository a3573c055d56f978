package decision

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(nil)

	tests := []struct {
		name     string
		mode     string
		freqType string
		scenario string
		want     State
	}{
		{
			name:     "no-op mode allows",
			mode:     "no-op",
			freqType: "Anything",
			scenario: "",
			want:     StateAllow,
		},
		{
			name:     "out of scope freq type blocks regardless of mode",
			mode:     "anything",
			freqType: "OutOfScope",
			scenario: "",
			want:     StateBlock,
		},
		{
			name:     "crisis scenario blocks even in guide mode",
			mode:     "guide",
			freqType: "X",
			scenario: "contains crisis language",
			want:     StateBlock,
		},
		{
			name:     "block mode blocks",
			mode:     "block",
			freqType: "X",
			scenario: "",
			want:     StateBlock,
		},
		{
			name:     "unknown mode guides",
			mode:     "rewrite",
			freqType: "Habitual",
			scenario: "",
			want:     StateGuide,
		},
		{
			name:     "empty mode guides",
			mode:     "",
			freqType: "Habitual",
			scenario: "",
			want:     StateGuide,
		},
		{
			name:     "out_of_scope scenario substring blocks",
			mode:     "no-op",
			freqType: "Habitual",
			scenario: "routed to out_of_scope handler",
			want:     StateBlock,
		},
		{
			name:     "scenario matching is case insensitive",
			mode:     "no-op",
			freqType: "Habitual",
			scenario: "CRISIS escalation",
			want:     StateBlock,
		},
		{
			name:     "freq type check is exact, not substring",
			mode:     "no-op",
			freqType: "NotOutOfScopeReally",
			scenario: "",
			want:     StateAllow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.mode, tt.freqType, tt.scenario)
			if got != tt.want {
				t.Errorf("Normalize(%q, %q, %q) = %v, want %v",
					tt.mode, tt.freqType, tt.scenario, got, tt.want)
			}
		})
	}
}

func TestReconcileMismatchLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	n := NewNormalizer(logger)

	got := n.Reconcile(StateBlock, "GUIDE")
	if got != StateBlock {
		t.Errorf("Reconcile returned %v, computed value must win", got)
	}
	out := buf.String()
	if !strings.Contains(out, "mismatch") {
		t.Errorf("expected mismatch warning in log output, got: %s", out)
	}
	if !strings.Contains(out, "GUIDE") || !strings.Contains(out, "BLOCK") {
		t.Errorf("warning should carry both states, got: %s", out)
	}
}

func TestReconcileAgreementIsSilent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	n := NewNormalizer(logger)

	if got := n.Reconcile(StateAllow, "ALLOW"); got != StateAllow {
		t.Errorf("Reconcile returned %v, want ALLOW", got)
	}
	if buf.Len() != 0 {
		t.Errorf("agreement should not log, got: %s", buf.String())
	}
}

func TestReconcileEmptyAssertionIsNotMismatch(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	n := NewNormalizer(logger)

	if got := n.Reconcile(StateGuide, ""); got != StateGuide {
		t.Errorf("Reconcile returned %v, want GUIDE", got)
	}
	if buf.Len() != 0 {
		t.Errorf("empty assertion should not log, got: %s", buf.String())
	}
}

func TestStateValid(t *testing.T) {
	for _, s := range []State{StateAllow, StateGuide, StateBlock} {
		if !s.Valid() {
			t.Errorf("State(%q).Valid() = false, want true", s)
		}
	}
	if State("allow").Valid() {
		t.Error("lowercase state should not be valid")
	}
	if State("").Valid() {
		t.Error("empty state should not be valid")
	}
}
