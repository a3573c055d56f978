package config

import "time"

// Config is the root configuration for the continuum service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Engine    EngineConfig    `yaml:"engine"`
	Evidence  EvidenceConfig  `yaml:"evidence"`
	License   LicenseConfig   `yaml:"license"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the host:port the API binds to.
	ListenAddress string `yaml:"listen_address"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes caps the request body size accepted by the API.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS controls cross-origin access to the API.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig configures cross-origin resource sharing.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAge         int      `yaml:"max_age"`
}

// EngineConfig configures the decision engine connection.
type EngineConfig struct {
	// Type selects the engine implementation: "http" or "static".
	// "static" serves a fixed pass-through verdict and exists for
	// local development without a live engine.
	Type string `yaml:"type"`

	// BaseURL is the remote engine endpoint (http type).
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the remote engine.
	APIKey string `yaml:"api_key"`

	Timeout time.Duration `yaml:"timeout"`
}

// EvidenceConfig configures the audit trail: fingerprint salt, local
// stores and the remote best-effort writers.
type EvidenceConfig struct {
	// Enabled turns evidence recording on.
	Enabled bool `yaml:"enabled"`

	// Salt is mixed into every content fingerprint. Changing it makes
	// new fingerprints incomparable with old ones.
	Salt string `yaml:"salt"`

	// LogDir is the directory for day-bucketed JSONL event logs.
	// Empty disables the JSONL store.
	LogDir string `yaml:"log_dir"`

	// SQLitePath is the local evidence archive database. Empty
	// disables the archive.
	SQLitePath string `yaml:"sqlite_path"`

	// AsyncBuffer is the recorder queue depth.
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds each storage write.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// GitHub configures the per-event remote object writer.
	GitHub GitHubConfig `yaml:"github"`

	// Mirror configures the git mirror of the JSONL log directory.
	Mirror MirrorConfig `yaml:"mirror"`
}

// GitHubConfig configures the remote contents-API event writer.
type GitHubConfig struct {
	Enabled bool `yaml:"enabled"`

	// Repo is "owner/name".
	Repo    string        `yaml:"repo"`
	Token   string        `yaml:"token"`
	Branch  string        `yaml:"branch"`
	Timeout time.Duration `yaml:"timeout"`
}

// MirrorConfig configures the git mirror backup of the log directory.
type MirrorConfig struct {
	Enabled bool `yaml:"enabled"`

	// Repository is the clone/push URL.
	Repository   string        `yaml:"repository"`
	Token        string        `yaml:"token"`
	Branch       string        `yaml:"branch"`
	PushInterval time.Duration `yaml:"push_interval"`
}

// LicenseConfig configures entitlement validation and enforcement.
type LicenseConfig struct {
	// Key is the signed license key.
	Key string `yaml:"key"`

	// PublicKey is the issuer's base64-encoded Ed25519 verification
	// key.
	PublicKey string `yaml:"public_key"`

	// UsageDBPath is the SQLite file holding the analysis counter.
	UsageDBPath string `yaml:"usage_db_path"`

	// Mode is "degrade" or "stop".
	Mode string `yaml:"mode"`

	// CheckInterval is the watchdog re-check interval (floor 60s).
	CheckInterval time.Duration `yaml:"check_interval"`
}

// TelemetryConfig groups the observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
	Redact    bool   `yaml:"redact"`
}

// MetricsConfig configures the metrics aggregator.
type MetricsConfig struct {
	// WindowSize is the latency sample window capacity.
	WindowSize int `yaml:"window_size"`

	// Prometheus enables the /metrics scrape endpoint.
	Prometheus bool `yaml:"prometheus"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	ServiceName string  `yaml:"service_name"`
}
