package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Component("test").Info("hello", "count", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
	if entry["component"] != "test" {
		t.Errorf("component = %v, want test", entry["component"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Slog().Info("suppressed")
	logger.Slog().Warn("emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "emitted") {
		t.Error("warn line should pass")
	}
}

func TestSetLevelAtRuntime(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Slog().Debug("before")
	if err := logger.SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	logger.Slog().Debug("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Error("debug line should be filtered before SetLevel")
	}
	if !strings.Contains(out, "after") {
		t.Error("debug line should pass after SetLevel")
	}

	if err := logger.SetLevel("verbose"); err == nil {
		t.Error("SetLevel should reject unknown levels")
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	for _, lvl := range []string{"", "debug", "info", "warn", "warning", "error", "ERROR"} {
		if _, err := parseLevel(lvl); err != nil {
			t.Errorf("parseLevel(%q) failed: %v", lvl, err)
		}
	}
	if _, err := parseLevel("trace"); err == nil {
		t.Error("parseLevel should reject trace")
	}
	if _, err := parseFormat("console"); err == nil {
		t.Error("parseFormat should reject console")
	}
}

func TestRedactingLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "text", Redact: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Slog().Info("loaded license", "key", "CONTINUUM-abc123def456")

	out := buf.String()
	if strings.Contains(out, "abc123def456") {
		t.Errorf("license key leaked into log output: %s", out)
	}
	if !strings.Contains(out, "CONTINUUM-***") {
		t.Errorf("expected masked key, got: %s", out)
	}
}
