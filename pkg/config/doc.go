// Package config loads and validates the service configuration.
//
// Configuration is read from a YAML file, filled with defaults,
// optionally overridden by CONTINUUM_* environment variables (the
// usual path for secrets like the license key and store tokens), and
// validated as a whole before use. A file watcher supports hot reload
// of the fields that are safe to change at runtime.
package config
