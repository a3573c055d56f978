package config

import (
	"fmt"
	"strings"
)

// FieldError is a validation error for one configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "license.mode").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the formatted field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates all field errors found in a
// configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the configuration and returns a ValidationError
// listing every violation, or nil when valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Server.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	}

	switch cfg.Engine.Type {
	case "http":
		if cfg.Engine.BaseURL == "" {
			errs = append(errs, FieldError{"engine.base_url", "required for engine type http"})
		}
	case "static":
	default:
		errs = append(errs, FieldError{"engine.type",
			fmt.Sprintf("unknown engine type %q (expected http or static)", cfg.Engine.Type)})
	}

	if cfg.Evidence.GitHub.Enabled {
		if cfg.Evidence.GitHub.Repo == "" {
			errs = append(errs, FieldError{"evidence.github.repo", "required when github writer is enabled"})
		}
		if cfg.Evidence.GitHub.Token == "" {
			errs = append(errs, FieldError{"evidence.github.token", "required when github writer is enabled"})
		}
		if cfg.Evidence.GitHub.Repo != "" && !strings.Contains(cfg.Evidence.GitHub.Repo, "/") {
			errs = append(errs, FieldError{"evidence.github.repo", `must be in "owner/name" form`})
		}
	}
	if cfg.Evidence.Mirror.Enabled && cfg.Evidence.Mirror.Repository == "" {
		errs = append(errs, FieldError{"evidence.mirror.repository", "required when mirror is enabled"})
	}

	switch cfg.License.Mode {
	case "degrade", "stop":
	default:
		errs = append(errs, FieldError{"license.mode",
			fmt.Sprintf("unknown mode %q (expected degrade or stop)", cfg.License.Mode)})
	}
	if cfg.License.Key == "" {
		errs = append(errs, FieldError{"license.key", "must not be empty"})
	}
	if cfg.License.PublicKey == "" {
		errs = append(errs, FieldError{"license.public_key", "must not be empty"})
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level",
			fmt.Sprintf("unknown level %q", cfg.Telemetry.Logging.Level)})
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format",
			fmt.Sprintf("unknown format %q", cfg.Telemetry.Logging.Format)})
	}

	if cfg.Telemetry.Tracing.Enabled && cfg.Telemetry.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{"telemetry.tracing.endpoint", "required when tracing is enabled"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
