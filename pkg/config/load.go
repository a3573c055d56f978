package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults
// and validates the result. Environment variables are not consulted;
// use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads the YAML file and applies
// CONTINUUM_* environment variable overrides on top. Environment
// variables always take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies CONTINUUM_SECTION_FIELD overrides. Secrets
// (license key, store tokens) are the usual reason to prefer env over
// a file on disk.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("CONTINUUM_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}

	if val := os.Getenv("CONTINUUM_ENGINE_TYPE"); val != "" {
		cfg.Engine.Type = val
	}
	if val := os.Getenv("CONTINUUM_ENGINE_BASE_URL"); val != "" {
		cfg.Engine.BaseURL = val
	}
	if val := os.Getenv("CONTINUUM_ENGINE_API_KEY"); val != "" {
		cfg.Engine.APIKey = val
	}

	if val := os.Getenv("CONTINUUM_EVIDENCE_ENABLED"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.Evidence.Enabled = parsed
		}
	}
	if val := os.Getenv("CONTINUUM_EVIDENCE_SALT"); val != "" {
		cfg.Evidence.Salt = val
	}
	if val := os.Getenv("CONTINUUM_EVIDENCE_LOG_DIR"); val != "" {
		cfg.Evidence.LogDir = val
	}
	if val := os.Getenv("CONTINUUM_EVIDENCE_SQLITE_PATH"); val != "" {
		cfg.Evidence.SQLitePath = val
	}
	if val := os.Getenv("CONTINUUM_EVIDENCE_GITHUB_REPO"); val != "" {
		cfg.Evidence.GitHub.Repo = val
		cfg.Evidence.GitHub.Enabled = true
	}
	if val := os.Getenv("CONTINUUM_EVIDENCE_GITHUB_TOKEN"); val != "" {
		cfg.Evidence.GitHub.Token = val
	}
	if val := os.Getenv("CONTINUUM_EVIDENCE_MIRROR_REPOSITORY"); val != "" {
		cfg.Evidence.Mirror.Repository = val
		cfg.Evidence.Mirror.Enabled = true
	}
	if val := os.Getenv("CONTINUUM_EVIDENCE_MIRROR_TOKEN"); val != "" {
		cfg.Evidence.Mirror.Token = val
	}

	if val := os.Getenv("CONTINUUM_LICENSE_KEY"); val != "" {
		cfg.License.Key = val
	}
	if val := os.Getenv("CONTINUUM_LICENSE_PUBLIC_KEY"); val != "" {
		cfg.License.PublicKey = val
	}
	if val := os.Getenv("CONTINUUM_LICENSE_MODE"); val != "" {
		cfg.License.Mode = val
	}
	if val := os.Getenv("CONTINUUM_LICENSE_CHECK_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.License.CheckInterval = d
		}
	}

	if val := os.Getenv("CONTINUUM_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CONTINUUM_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CONTINUUM_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
		cfg.Telemetry.Tracing.Enabled = true
	}
}
