package config

import "time"

// Default values for configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:8090"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = int64(1 << 20) // 1MB

	DefaultCORSMaxAge = 3600

	DefaultEngineType    = "http"
	DefaultEngineTimeout = 30 * time.Second

	DefaultEvidenceEnabled      = true
	DefaultEvidenceAsyncBuffer  = 1000
	DefaultEvidenceWriteTimeout = 5 * time.Second
	DefaultGitHubBranch         = "main"
	DefaultGitHubTimeout        = 10 * time.Second
	DefaultMirrorBranch         = "main"
	DefaultMirrorPushInterval   = time.Minute

	DefaultLicenseMode          = "degrade"
	DefaultLicenseCheckInterval = 5 * time.Minute
	DefaultLicenseUsageDBPath   = "data/usage.db"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsWindowSize = 2000

	DefaultTracingServiceName = "continuum"
)

// ApplyDefaults fills zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = DefaultCORSMaxAge
	}

	if cfg.Engine.Type == "" {
		cfg.Engine.Type = DefaultEngineType
	}
	if cfg.Engine.Timeout == 0 {
		cfg.Engine.Timeout = DefaultEngineTimeout
	}

	// LogDir and SQLitePath are deliberately not defaulted: an empty
	// path disables that store and only the in-memory window remains.
	if cfg.Evidence.AsyncBuffer == 0 {
		cfg.Evidence.AsyncBuffer = DefaultEvidenceAsyncBuffer
	}
	if cfg.Evidence.WriteTimeout == 0 {
		cfg.Evidence.WriteTimeout = DefaultEvidenceWriteTimeout
	}
	if cfg.Evidence.GitHub.Branch == "" {
		cfg.Evidence.GitHub.Branch = DefaultGitHubBranch
	}
	if cfg.Evidence.GitHub.Timeout == 0 {
		cfg.Evidence.GitHub.Timeout = DefaultGitHubTimeout
	}
	if cfg.Evidence.Mirror.Branch == "" {
		cfg.Evidence.Mirror.Branch = DefaultMirrorBranch
	}
	if cfg.Evidence.Mirror.PushInterval == 0 {
		cfg.Evidence.Mirror.PushInterval = DefaultMirrorPushInterval
	}

	if cfg.License.Mode == "" {
		cfg.License.Mode = DefaultLicenseMode
	}
	if cfg.License.CheckInterval == 0 {
		cfg.License.CheckInterval = DefaultLicenseCheckInterval
	}
	if cfg.License.UsageDBPath == "" {
		cfg.License.UsageDBPath = DefaultLicenseUsageDBPath
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.WindowSize == 0 {
		cfg.Telemetry.Metrics.WindowSize = DefaultMetricsWindowSize
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}
