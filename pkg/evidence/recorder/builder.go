package recorder

import (
	"log/slog"

	"continuum-hq/continuum/pkg/evidence"
	"continuum-hq/continuum/pkg/evidence/scrub"
)

// BuildParams carries the decision-engine truth needed to assemble one
// evidence record. RepairedText is nil for a blocked request; the builder
// fingerprints the empty string in that case so output_length stays a
// meaningful zero rather than a type gap.
type BuildParams struct {
	RequestText  string
	RepairedText *string

	FreqType string
	Mode     string
	Scenario string

	ConfidenceFinal float64
	// ConfidenceClassifier may be absent from the verdict; a nil value
	// leaves the key out of the record so schema validation can flag it.
	ConfidenceClassifier *float64

	Metrics map[string]any
	Audit   map[string]any

	LLMUsed  *bool
	CacheHit *bool

	Model        string
	Usage        map[string]any
	OutputSource string

	PipelineFingerprint string
}

// Builder assembles versioned evidence records from decision-engine output.
// It owns the fingerprint salt and guarantees that every record it returns
// has passed through the scrubber.
type Builder struct {
	salt   string
	logger *slog.Logger
}

// NewBuilder creates a Builder with the process-wide fingerprint salt.
// An empty salt selects unsalted fingerprints.
func NewBuilder(salt string) *Builder {
	return &Builder{
		salt:   salt,
		logger: slog.Default().With("component", "evidence.builder"),
	}
}

// Build assembles, validates, and scrubs one evidence record.
//
// Schema validation runs before the final whole-record scrub pass; the
// scrubber is idempotent, so the order only determines which view the
// validator sees. A schema violation is recorded in schema_valid and
// schema_errors, never raised: this is an audit trail, not a blocking gate.
func (b *Builder) Build(p BuildParams) evidence.EvidenceRecord {
	inputFP := FingerprintText(p.RequestText, b.salt)

	output := ""
	if p.RepairedText != nil {
		output = *p.RepairedText
	}
	outputFP := FingerprintText(output, b.salt)

	confidence := map[string]any{
		"final": p.ConfidenceFinal,
	}
	if p.ConfidenceClassifier != nil {
		confidence["classifier"] = *p.ConfidenceClassifier
	}

	record := evidence.EvidenceRecord{
		"schema_version":               evidence.SchemaVersion,
		"input_fp_sha256":              inputFP.SHA256,
		"input_length":                 inputFP.Length,
		"output_fp_sha256":             outputFP.SHA256,
		"output_length":                outputFP.Length,
		"freq_type":                    p.FreqType,
		"mode":                         p.Mode,
		"scenario":                     p.Scenario,
		"confidence":                   confidence,
		"metrics":                      asObject(scrub.Scrub(p.Metrics)),
		"audit":                        asObject(scrub.Scrub(p.Audit)),
		"llm_used":                     boolOrNil(p.LLMUsed),
		"cache_hit":                    boolOrNil(p.CacheHit),
		"model":                        p.Model,
		"usage":                        asObject(scrub.Scrub(p.Usage)),
		"output_source":                p.OutputSource,
		"api_version":                  evidence.APIVersion,
		"pipeline_version_fingerprint": p.PipelineFingerprint,
	}

	violations := evidence.ValidateRecord(record)
	if len(violations) > 0 {
		b.logger.Warn("evidence record failed schema validation",
			"violations", violations,
		)
	}

	// Second scrub pass over the assembled record. The sub-objects were
	// already scrubbed, so this only defends the fixed keys against rule
	// table drift.
	if scrubbed, ok := scrub.Scrub(map[string]any(record)).(map[string]any); ok {
		record = evidence.EvidenceRecord(scrubbed)
	}

	record["schema_valid"] = len(violations) == 0
	if len(violations) > 0 {
		record["schema_errors"] = violations
	}

	return record
}

// InputFingerprint returns the event-level fingerprint of text under
// the builder's salt, for embedding in an AnalysisEvent.
func (b *Builder) InputFingerprint(text string) evidence.InputFingerprint {
	fp := FingerprintText(text, b.salt)
	return evidence.InputFingerprint{
		SHA256: fp.SHA256,
		Length: fp.Length,
		Salted: fp.Salted,
	}
}

// asObject keeps map-shaped scrub results and normalizes everything else
// (including nil input) to an empty object so the schema's object checks
// hold.
func asObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}

// boolOrNil widens an optional bool for storage in the record.
func boolOrNil(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
