package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"continuum-hq/continuum/pkg/decision"
	"continuum-hq/continuum/pkg/engine"
	"continuum-hq/continuum/pkg/evidence"
	"continuum-hq/continuum/pkg/evidence/recorder"
	"continuum-hq/continuum/pkg/gateway"
	"continuum-hq/continuum/pkg/license"
	"continuum-hq/continuum/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/trace"
)

// Repair notes surfaced on the response. Notes are response-only and
// never persisted.
const (
	safetyNote  = "Safety gate triggered. Downstream system should follow crisis/safety policy."
	unknownNote = "Unable to detect specific tone pattern. The text appears neutral or requires more context."
)

// lowConfidenceThreshold triggers the contextual repair note when the
// final confidence falls below it.
const lowConfidenceThreshold = 0.3

// Analyze handles POST /api/v1/analyze: license gate, engine verdict,
// decision normalization, evidence recording, metrics, response.
func (a *API) Analyze(w http.ResponseWriter, r *http.Request) {
	var req gateway.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// License gate runs before any engine work.
	if err := a.Watchdog.Gate(r.Context()); err != nil {
		var licErr *license.LicenseError
		if errors.As(err, &licErr) {
			writeError(w, http.StatusServiceUnavailable, licErr.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, "license check failed")
		return
	}

	ctx := r.Context()
	var span trace.Span
	if a.Tracer != nil {
		ctx, span = a.Tracer.Start(ctx, "analyze")
		defer span.End()
	}

	start := time.Now()
	verdict, err := a.Engine.Process(ctx, req.Text)
	if err != nil {
		a.logger().Error("engine processing failed", "error", err)
		if span != nil {
			tracing.SetStatus(span, err)
		}
		writeError(w, http.StatusBadGateway, "analysis failed")
		return
	}
	if verdict.Error != "" {
		writeError(w, http.StatusBadRequest, verdict.Reason)
		return
	}

	state := a.Normalizer.Normalize(verdict.Mode, verdict.FreqType, verdict.Output.Scenario)
	state = a.Normalizer.Reconcile(state, verdict.AssertedState())

	llmUsed := verdict.LLMUsed != nil && *verdict.LLMUsed
	if span != nil {
		span.SetAttributes(tracing.DecisionAttributes(string(state), verdict.FreqType, verdict.OutputSource, llmUsed)...)
	}

	resp := a.buildResponse(req.Text, verdict, state)
	logID := a.recordEvidence(r, req.Text, verdict, state)
	resp.LogID = logID

	if a.Usage != nil {
		if _, err := a.Usage.Increment(r.Context()); err != nil {
			a.logger().Warn("usage counter increment failed", "error", err)
		}
	}

	latencyMs := float64(time.Since(start).Microseconds()) / 1000
	if a.Metrics != nil {
		a.Metrics.Record(state, latencyMs, llmUsed, verdict.FreqType == decision.FreqTypeOutOfScope)
	}

	writeJSON(w, http.StatusOK, resp)
}

// buildResponse assembles the caller-facing answer, applying the
// safety gate and the contextual repair notes.
func (a *API) buildResponse(text string, verdict *engine.Verdict, state decision.State) *gateway.AnalyzeResponse {
	resp := &gateway.AnalyzeResponse{
		Original:      text,
		FreqType:      verdict.FreqType,
		Confidence:    verdict.Confidence.Final,
		Scenario:      verdict.Output.Scenario,
		RepairedText:  verdict.Output.RepairedText,
		Mode:          verdict.Mode,
		DecisionState: string(state),
	}
	if resp.Scenario == "" {
		resp.Scenario = "unknown"
	}
	if verdict.Safety.Flag != "" {
		flag := verdict.Safety.Flag
		conf := verdict.Safety.Confidence
		resp.SafetyFlag = &flag
		resp.SafetyConfidence = &conf
	}

	switch {
	case verdict.Safety.Triggered():
		// Crisis gate: never surface a beautified rewrite, keep the
		// original and point downstream at the safety policy.
		resp.RepairedText = &text
		note := safetyNote
		resp.RepairNote = &note

	case verdict.FreqType == "Unknown":
		resp.RepairedText = &text
		note := unknownNote
		resp.RepairNote = &note

	case verdict.Confidence.Final < lowConfidenceThreshold:
		resp.RepairedText = &text
		note := fmt.Sprintf("Low confidence detection (%.2f). Suggested tone: %s. Please review manually.",
			verdict.Confidence.Final, verdict.FreqType)
		resp.RepairNote = &note
	}

	return resp
}

// recordEvidence builds and enqueues the audit event. Failures degrade
// to "logging skipped"; the response is served regardless.
func (a *API) recordEvidence(r *http.Request, text string, verdict *engine.Verdict, state decision.State) string {
	if a.Evidence == nil || a.Builder == nil {
		return ""
	}

	record := a.Builder.Build(recorder.BuildParams{
		RequestText:          text,
		RepairedText:         verdict.Output.RepairedText,
		FreqType:             verdict.FreqType,
		Mode:                 verdict.Mode,
		Scenario:             verdict.Output.Scenario,
		ConfidenceFinal:      verdict.Confidence.Final,
		ConfidenceClassifier: verdict.Confidence.Classifier,
		Metrics:              verdict.Metrics,
		Audit:                verdict.Audit,
		LLMUsed:              verdict.LLMUsed,
		CacheHit:             verdict.CacheHit,
		Model:                verdict.Model,
		Usage:                verdict.Usage,
		OutputSource:         verdict.OutputSource,
		PipelineFingerprint:  verdict.PipelineVersionFingerprint,
	})

	event := &evidence.AnalysisEvent{
		ID:        recorder.NewEventID(),
		Timestamp: time.Now().UTC(),
		Input:     a.Builder.InputFingerprint(text),
		Evidence:  record,
		Metadata: map[string]any{
			"decision_state": string(state),
		},
	}

	if err := a.Evidence.RecordEvent(r.Context(), event); err != nil {
		a.logger().Warn("evidence recording skipped", "error", err, "event_id", event.ID)
	}
	return event.ID
}
