package logging

import (
	"io"
	"regexp"
)

// Redactor masks credentials in log output. The service never logs
// analyzed content, so the redactor only has to cover the secrets the
// process itself handles: license keys, store tokens and bearer
// headers.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternLicenseKey  = "license_key"
	PatternGitHubToken = "github_token"
	PatternBearerToken = "bearer_token"
	PatternAPIKey      = "api_key"
)

// NewRedactor creates a Redactor with the built-in credential
// patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactPattern{
			{
				name:        PatternLicenseKey,
				regex:       regexp.MustCompile(`CONTINUUM-[A-Za-z0-9_-]+`),
				replacement: "CONTINUUM-***",
			},
			{
				name:        PatternGitHubToken,
				regex:       regexp.MustCompile(`\b(gh[pousr]_[A-Za-z0-9]{20,}|github_pat_[A-Za-z0-9_]{20,})\b`),
				replacement: "ghp_***",
			},
			{
				name:        PatternBearerToken,
				regex:       regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
				replacement: "Bearer ***",
			},
			{
				name:        PatternAPIKey,
				regex:       regexp.MustCompile(`(?i)(api[-_]?key["':=\s]+)[A-Za-z0-9\-._]+`),
				replacement: "${1}***",
			},
		},
	}
}

// Redact masks all known credential patterns in s.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// RedactingWriter applies a Redactor to every write before forwarding
// to the underlying writer. slog handlers emit one line per Write
// call, so line-oriented redaction is safe here.
type RedactingWriter struct {
	w        io.Writer
	redactor *Redactor
}

// NewRedactingWriter wraps w with redaction.
func NewRedactingWriter(w io.Writer, redactor *Redactor) *RedactingWriter {
	return &RedactingWriter{w: w, redactor: redactor}
}

// Write implements io.Writer.
func (rw *RedactingWriter) Write(p []byte) (int, error) {
	redacted := rw.redactor.Redact(string(p))
	if _, err := rw.w.Write([]byte(redacted)); err != nil {
		return 0, err
	}
	// Report the original length so slog does not see a short write.
	return len(p), nil
}
