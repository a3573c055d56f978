package engine

// Confidence carries the engine's scoring for a verdict. Final is
// always present; Classifier is nil when the classification stage was
// bypassed (for example on a cache hit that skipped scoring).
type Confidence struct {
	Final      float64  `json:"final"`
	Classifier *float64 `json:"classifier,omitempty"`
}

// Output is the engine's produced result for a request. RepairedText
// is nil when the engine decided not to emit a rewrite (a block, or a
// pass-through).
type Output struct {
	Scenario     string  `json:"scenario"`
	RepairedText *string `json:"repaired_text,omitempty"`
}

// Safety carries the engine's safety-gate signal. Flag is empty or
// "none" when no gate fired; any other value makes the response layer
// refuse to surface a repaired output.
type Safety struct {
	Flag       string  `json:"flag,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Triggered reports whether the safety gate fired.
func (s Safety) Triggered() bool {
	return s.Flag != "" && s.Flag != "none"
}

// Verdict is the decision engine's full answer for one analyzed text.
// Everything the audit trail records about a request originates here;
// the raw request text itself never travels further than the
// fingerprinter.
type Verdict struct {
	// FreqType is the engine's frequency classification, for example
	// "Habitual", "Occasional" or "OutOfScope".
	FreqType string `json:"freq_type"`

	// Mode is the engine's free-form handling mode ("no-op", "guide",
	// "block", ...). The decision normalizer maps it onto the closed
	// state vocabulary; it is never trusted as a final state.
	Mode string `json:"mode"`

	Confidence Confidence `json:"confidence"`
	Output     Output     `json:"output"`
	Safety     Safety     `json:"safety"`

	// LLMUsed and CacheHit are nil when the engine did not report them.
	LLMUsed  *bool `json:"llm_used,omitempty"`
	CacheHit *bool `json:"cache_hit,omitempty"`

	// Model names the model that produced the output, empty when no
	// model was consulted.
	Model string `json:"model,omitempty"`

	// OutputSource says which pipeline stage produced the output
	// ("cache", "rules", "llm").
	OutputSource string `json:"output_source,omitempty"`

	// Usage, Audit and Metrics are opaque engine-reported objects.
	// They are scrubbed before anything persists them.
	Usage   map[string]any `json:"usage,omitempty"`
	Audit   map[string]any `json:"audit,omitempty"`
	Metrics map[string]any `json:"metrics,omitempty"`

	// PipelineVersionFingerprint identifies the engine build and rule
	// set that produced this verdict.
	PipelineVersionFingerprint string `json:"pipeline_version_fingerprint,omitempty"`

	// Error and Reason are set when the engine completed but wants the
	// caller to know the verdict is degraded.
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// AssertedState extracts the decision state the engine claimed inside
// its metrics object, if any. The normalizer reconciles this claim
// against its own computation; it is informational only.
func (v *Verdict) AssertedState() string {
	if v.Metrics == nil {
		return ""
	}
	s, _ := v.Metrics["decision_state"].(string)
	return s
}
