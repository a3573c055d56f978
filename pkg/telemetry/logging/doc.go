// Package logging builds the process logger: slog with a JSON or text
// handler, a runtime-adjustable level, and credential redaction on the
// output path.
package logging
