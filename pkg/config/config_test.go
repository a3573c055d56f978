package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
engine:
  type: static
license:
  key: CONTINUUM-testkey
  public_key: dGVzdC1wdWJsaWMta2V5
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("listen address = %q, want default", cfg.Server.ListenAddress)
	}
	if cfg.License.Mode != "degrade" {
		t.Errorf("license mode = %q, want degrade default", cfg.License.Mode)
	}
	if cfg.Evidence.AsyncBuffer != DefaultEvidenceAsyncBuffer {
		t.Errorf("async buffer = %d, want default", cfg.Evidence.AsyncBuffer)
	}
	if cfg.Telemetry.Metrics.WindowSize != DefaultMetricsWindowSize {
		t.Errorf("window size = %d, want default", cfg.Telemetry.Metrics.WindowSize)
	}
}

func TestEmptyEvidencePathsStayDisabled(t *testing.T) {
	// An empty log_dir or sqlite_path turns that store off; defaulting
	// must not quietly re-enable it.
	cfg, err := LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Evidence.LogDir != "" {
		t.Errorf("log_dir = %q, want empty (disabled)", cfg.Evidence.LogDir)
	}
	if cfg.Evidence.SQLitePath != "" {
		t.Errorf("sqlite_path = %q, want empty (disabled)", cfg.Evidence.SQLitePath)
	}
}

func TestLoadConfigExplicitValues(t *testing.T) {
	yaml := `
server:
  listen_address: "0.0.0.0:9000"
engine:
  type: http
  base_url: http://engine:9100
license:
  key: CONTINUUM-k
  public_key: cGs=
  mode: stop
  check_interval: 2m
`
	cfg, err := LoadConfig(writeConfig(t, yaml))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("listen address not read: %q", cfg.Server.ListenAddress)
	}
	if cfg.License.Mode != "stop" {
		t.Errorf("mode = %q, want stop", cfg.License.Mode)
	}
	if cfg.License.CheckInterval != 2*time.Minute {
		t.Errorf("interval = %v, want 2m", cfg.License.CheckInterval)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Engine.Type = "http" // no base_url
	cfg.License.Mode = "observe"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	fields := make(map[string]bool)
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"engine.base_url", "license.mode", "license.key", "license.public_key"} {
		if !fields[want] {
			t.Errorf("missing error for %s; got %v", want, verr.Errors)
		}
	}
}

func TestValidateGitHubWriter(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Engine.Type = "static"
	cfg.License.Key = "CONTINUUM-k"
	cfg.License.PublicKey = "cGs="
	cfg.Evidence.GitHub.Enabled = true
	cfg.Evidence.GitHub.Repo = "no-slash"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors for github writer")
	}
	if !strings.Contains(err.Error(), "evidence.github") {
		t.Errorf("expected github field errors, got: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONTINUUM_LICENSE_MODE", "stop")
	t.Setenv("CONTINUUM_LOG_LEVEL", "debug")
	t.Setenv("CONTINUUM_EVIDENCE_SALT", "pepper")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}
	if cfg.License.Mode != "stop" {
		t.Errorf("mode = %q, want env override stop", cfg.License.Mode)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
	if cfg.Evidence.Salt != "pepper" {
		t.Errorf("salt = %q, want pepper", cfg.Evidence.Salt)
	}
}

func TestEnvOverrideInvalidValueFailsValidation(t *testing.T) {
	t.Setenv("CONTINUUM_LICENSE_MODE", "maybe")

	if _, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalYAML)); err == nil {
		t.Fatal("invalid env override should fail validation")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "engine: [")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
