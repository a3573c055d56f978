package evidence

import (
	"context"
	"time"
)

// SchemaVersion is the current evidence record schema version.
const SchemaVersion = "1.0"

// APIVersion is the public API version stamped into every evidence record.
const APIVersion = "2.0.0"

// EvidenceRecord is the content-free, schema-versioned summary of one
// decision. It is built once per analyzed request from the decision engine
// verdict, scrubbed, and validated; after that it is immutable.
//
// The record is deliberately a key/value structure rather than a fixed
// struct: schema validation must be able to distinguish an absent key from
// a zero value (e.g. a verdict that never carried confidence.classifier),
// and the scrubber operates uniformly over nested key/value data.
//
// Top-level keys (schema v1.0):
//
//	schema_version, input_fp_sha256, input_length, output_fp_sha256,
//	output_length, freq_type, mode, scenario, confidence{final, classifier},
//	metrics, audit, llm_used, cache_hit, model, usage, output_source,
//	api_version, pipeline_version_fingerprint, schema_valid, schema_errors
//
// No key anywhere in the record may carry raw text or content-derived
// fragments; the scrubber enforces this recursively.
type EvidenceRecord map[string]any

// SchemaValid reports whether the record passed schema validation when it
// was built. A record that fails validation is still usable; the violation
// codes are carried in schema_errors.
func (r EvidenceRecord) SchemaValid() bool {
	valid, _ := r["schema_valid"].(bool)
	return valid
}

// SchemaErrors returns the violation codes recorded at build time, or nil.
func (r EvidenceRecord) SchemaErrors() []string {
	errs, _ := r["schema_errors"].([]string)
	return errs
}

// InputFingerprint describes the analyzed text without containing it: a
// one-way hash plus the original length.
type InputFingerprint struct {
	SHA256 string `json:"fingerprint_sha256"`
	Length int    `json:"length"`
	Salted bool   `json:"salted"`
}

// AnalysisEvent is the unit of persistence for one analyzed request. It is
// created once per request and never mutated after submission to storage.
type AnalysisEvent struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Input     InputFingerprint `json:"input"`
	Evidence  EvidenceRecord   `json:"evidence"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
}

// FeedbackEvent captures user feedback about a prior analysis. TargetLogID
// is an opaque foreign reference; its existence is never checked because
// the store is append-only and not queried back by this core.
type FeedbackEvent struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	TargetLogID string         `json:"target_log_id"`
	Feedback    FeedbackScores `json:"feedback"`
}

// FeedbackScores holds the user-provided ratings for one analysis.
type FeedbackScores struct {
	Accuracy int  `json:"accuracy"`
	Helpful  int  `json:"helpful"`
	Accepted bool `json:"accepted"`
}

// StorageStats contains content-free aggregate counts exposed by the stats
// endpoint.
type StorageStats struct {
	TotalEvents   int64            `json:"total_events"`
	TotalFeedback int64            `json:"total_feedback"`
	FreqTypes     map[string]int64 `json:"freq_types"`
	Decisions     map[string]int64 `json:"decisions"`
}

// Storage is the interface for evidence persistence backends.
//
// Implementations must treat stored events as immutable and append-only.
// Store operations are best-effort from the pipeline's perspective: a
// failed write is logged by the caller and never fails the request.
type Storage interface {
	// StoreEvent persists a single analysis event.
	StoreEvent(ctx context.Context, event *AnalysisEvent) error

	// StoreFeedback persists a single feedback event.
	StoreFeedback(ctx context.Context, event *FeedbackEvent) error

	// Stats returns aggregate counts for the stats endpoint.
	Stats(ctx context.Context) (*StorageStats, error)

	// Close releases any resources held by the backend.
	Close() error
}
