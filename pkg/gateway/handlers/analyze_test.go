package handlers

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"continuum-hq/continuum/pkg/decision"
	"continuum-hq/continuum/pkg/engine"
	"continuum-hq/continuum/pkg/evidence"
	"continuum-hq/continuum/pkg/evidence/recorder"
	"continuum-hq/continuum/pkg/gateway"
	"continuum-hq/continuum/pkg/license"
	"continuum-hq/continuum/pkg/telemetry/metrics"
)

// sha256 of the empty string, unsalted.
const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// captureSink records every event handed to it.
type captureSink struct {
	events   []*evidence.AnalysisEvent
	feedback []*evidence.FeedbackEvent
}

func (c *captureSink) RecordEvent(ctx context.Context, e *evidence.AnalysisEvent) error {
	c.events = append(c.events, e)
	return nil
}

func (c *captureSink) RecordFeedback(ctx context.Context, e *evidence.FeedbackEvent) error {
	c.feedback = append(c.feedback, e)
	return nil
}

// countingEngine wraps a verdict and counts invocations.
type countingEngine struct {
	verdict engine.Verdict
	calls   atomic.Int32
}

func (e *countingEngine) Name() string { return "counting" }

func (e *countingEngine) Process(ctx context.Context, text string) (*engine.Verdict, error) {
	e.calls.Add(1)
	v := e.verdict
	return &v, nil
}

type stubUsage struct {
	count atomic.Int64
	fail  bool
}

func (s *stubUsage) Count(ctx context.Context) (int64, error) {
	if s.fail {
		return 0, errors.New("backend unreachable")
	}
	return s.count.Load(), nil
}

func (s *stubUsage) Increment(ctx context.Context) (int64, error) {
	return s.count.Add(1), nil
}

// testWatchdog builds a watchdog over a freshly minted license key.
func testWatchdog(t *testing.T, mode license.EnforcementMode, usage license.UsageReader) *license.Watchdog {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	payload, err := json.Marshal(license.Claims{
		Iss:      "continuum-hq",
		Sub:      "license",
		Licensee: "test",
		Tier:     "dev",
		Iat:      time.Now().Unix(),
		Jti:      "lic-test",
	})
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	sig := ed25519.Sign(priv, payload)
	key := "CONTINUUM-" + base64.RawURLEncoding.EncodeToString(append(payload, sig...))

	v, err := license.NewValidator(key, base64.StdEncoding.EncodeToString(pub), usage, nil)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	w, err := license.NewWatchdog(v, license.WatchdogConfig{Mode: mode}, nil)
	if err != nil {
		t.Fatalf("NewWatchdog: %v", err)
	}
	return w
}

func newTestAPI(t *testing.T, eng engine.Engine, logBuf *bytes.Buffer) (*API, *captureSink) {
	t.Helper()

	if logBuf == nil {
		logBuf = &bytes.Buffer{}
	}
	logger := slog.New(slog.NewTextHandler(logBuf, nil))
	sink := &captureSink{}

	api := &API{
		Engine:          eng,
		Normalizer:      decision.NewNormalizer(logger),
		Builder:         recorder.NewBuilder(""),
		Evidence:        sink,
		Usage:           &stubUsage{},
		Watchdog:        testWatchdog(t, license.ModeDegrade, &stubUsage{}),
		Metrics:         metrics.NewAggregator(100, nil),
		Logger:          logger,
		EvidenceEnabled: true,
	}
	return api, sink
}

func doAnalyze(t *testing.T, api *API, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	api.Analyze(rec, req)
	return rec
}

func TestAnalyzeOutOfScopeGuideMismatch(t *testing.T) {
	// A 42-byte text whose verdict says guide but whose freq type
	// forces a block.
	text := strings.Repeat("x", 42)
	eng := &countingEngine{verdict: engine.Verdict{
		FreqType:   "OutOfScope",
		Mode:       "guide",
		Confidence: engine.Confidence{Final: 0.9},
		Output:     engine.Output{Scenario: "oos"},
		Metrics:    map[string]any{"decision_state": "GUIDE"},
	}}

	var logBuf bytes.Buffer
	api, sink := newTestAPI(t, eng, &logBuf)

	body, _ := json.Marshal(gateway.AnalyzeRequest{Text: text})
	rec := doAnalyze(t, api, string(body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp gateway.AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DecisionState != "BLOCK" {
		t.Errorf("decision_state = %q, want BLOCK", resp.DecisionState)
	}

	if len(sink.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(sink.events))
	}
	record := sink.events[0].Evidence
	if record["output_fp_sha256"] != emptySHA256 {
		t.Errorf("output fingerprint = %v, want empty-string hash", record["output_fp_sha256"])
	}
	if record["output_length"] != 0 {
		t.Errorf("output_length = %v, want 0", record["output_length"])
	}
	if record["input_length"] != 42 {
		t.Errorf("input_length = %v, want 42", record["input_length"])
	}
	if sink.events[0].Metadata["decision_state"] != "BLOCK" {
		t.Errorf("event decision_state = %v, want BLOCK", sink.events[0].Metadata["decision_state"])
	}

	// Upstream asserted GUIDE; the computed BLOCK wins and the
	// disagreement is logged.
	if !strings.Contains(logBuf.String(), "mismatch") {
		t.Errorf("expected mismatch warning in logs, got: %s", logBuf.String())
	}
}

func TestAnalyzeHaltedLicenseRejectsBeforeEngine(t *testing.T) {
	eng := &countingEngine{verdict: engine.Verdict{FreqType: "Habitual", Mode: "no-op"}}
	api, _ := newTestAPI(t, eng, nil)
	api.Watchdog = testWatchdog(t, license.ModeStop, &stubUsage{fail: true})
	// Force a check so the watchdog observes the invalid state.
	api.Watchdog.EnsureFresh(context.Background())

	body, _ := json.Marshal(gateway.AnalyzeRequest{Text: "hello"})
	rec := doAnalyze(t, api, string(body))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if eng.calls.Load() != 0 {
		t.Errorf("engine invoked %d times, want 0", eng.calls.Load())
	}
}

func TestAnalyzeAllowPath(t *testing.T) {
	classifier := 0.95
	llm := false
	eng := &countingEngine{verdict: engine.Verdict{
		FreqType:   "Habitual",
		Mode:       "no-op",
		Confidence: engine.Confidence{Final: 0.92, Classifier: &classifier},
		Output:     engine.Output{Scenario: "frequency_question"},
		LLMUsed:    &llm,
	}}
	api, sink := newTestAPI(t, eng, nil)

	body, _ := json.Marshal(gateway.AnalyzeRequest{Text: "every morning I run"})
	rec := doAnalyze(t, api, string(body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp gateway.AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DecisionState != "ALLOW" {
		t.Errorf("decision_state = %q, want ALLOW", resp.DecisionState)
	}
	if resp.LogID == "" {
		t.Error("log_id missing from response")
	}
	if resp.Original != "every morning I run" {
		t.Errorf("original = %q", resp.Original)
	}
	if len(sink.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(sink.events))
	}
	if !sink.events[0].Evidence.SchemaValid() {
		t.Errorf("schema errors: %v", sink.events[0].Evidence.SchemaErrors())
	}

	snap := api.Metrics.Snapshot()
	if snap.TotalRequests != 1 || snap.Decisions["ALLOW"] != 1 {
		t.Errorf("metrics snapshot = %+v", snap)
	}
}

func TestAnalyzeSafetyGateKeepsOriginal(t *testing.T) {
	repaired := "softer phrasing"
	eng := &countingEngine{verdict: engine.Verdict{
		FreqType:   "Habitual",
		Mode:       "guide",
		Confidence: engine.Confidence{Final: 0.8},
		Output:     engine.Output{Scenario: "guide", RepairedText: &repaired},
		Safety:     engine.Safety{Flag: "crisis", Confidence: 0.97},
	}}
	api, _ := newTestAPI(t, eng, nil)

	body, _ := json.Marshal(gateway.AnalyzeRequest{Text: "original words"})
	rec := doAnalyze(t, api, string(body))

	var resp gateway.AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RepairedText == nil || *resp.RepairedText != "original words" {
		t.Errorf("safety gate must keep the original text, got %v", resp.RepairedText)
	}
	if resp.RepairNote == nil || !strings.Contains(*resp.RepairNote, "Safety gate") {
		t.Errorf("expected safety note, got %v", resp.RepairNote)
	}
	if resp.SafetyFlag == nil || *resp.SafetyFlag != "crisis" {
		t.Errorf("safety_flag = %v, want crisis", resp.SafetyFlag)
	}
}

func TestAnalyzeLowConfidenceNote(t *testing.T) {
	eng := &countingEngine{verdict: engine.Verdict{
		FreqType:   "Occasional",
		Mode:       "guide",
		Confidence: engine.Confidence{Final: 0.2},
		Output:     engine.Output{Scenario: "guide"},
	}}
	api, _ := newTestAPI(t, eng, nil)

	body, _ := json.Marshal(gateway.AnalyzeRequest{Text: "sometimes I wonder"})
	rec := doAnalyze(t, api, string(body))

	var resp gateway.AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RepairNote == nil || !strings.Contains(*resp.RepairNote, "Low confidence") {
		t.Errorf("expected low-confidence note, got %v", resp.RepairNote)
	}
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	api, _ := newTestAPI(t, &countingEngine{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", "{"},
		{"empty text", `{"text":""}`},
		{"oversized text", `{"text":"` + strings.Repeat("a", gateway.MaxTextLength+1) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doAnalyze(t, api, tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestAnalyzeEngineDegradedVerdict(t *testing.T) {
	eng := &countingEngine{verdict: engine.Verdict{
		Error:  "pipeline_failure",
		Reason: "classifier unavailable",
	}}
	api, _ := newTestAPI(t, eng, nil)

	body, _ := json.Marshal(gateway.AnalyzeRequest{Text: "hello"})
	rec := doAnalyze(t, api, string(body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "classifier unavailable") {
		t.Errorf("expected reason in body, got %s", rec.Body.String())
	}
}
