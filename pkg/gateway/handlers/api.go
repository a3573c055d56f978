package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"continuum-hq/continuum/pkg/decision"
	"continuum-hq/continuum/pkg/engine"
	"continuum-hq/continuum/pkg/evidence"
	"continuum-hq/continuum/pkg/evidence/recorder"
	"continuum-hq/continuum/pkg/gateway"
	"continuum-hq/continuum/pkg/license"
	"continuum-hq/continuum/pkg/telemetry/health"
	"continuum-hq/continuum/pkg/telemetry/metrics"
	"continuum-hq/continuum/pkg/telemetry/tracing"
)

// EvidenceSink accepts the audit events the handlers produce. Both
// methods are best-effort from the handler's perspective: a failed
// record is logged, never surfaced to the caller.
type EvidenceSink interface {
	RecordEvent(ctx context.Context, event *evidence.AnalysisEvent) error
	RecordFeedback(ctx context.Context, event *evidence.FeedbackEvent) error
}

// StatsSource provides the aggregate counts behind the stats endpoint.
type StatsSource interface {
	Stats(ctx context.Context) (*evidence.StorageStats, error)
}

// UsageCounter increments the cumulative analysis counter the license
// quota runs against.
type UsageCounter interface {
	Increment(ctx context.Context) (int64, error)
}

// API bundles the dependencies shared by all endpoint handlers.
type API struct {
	Engine     engine.Engine
	Normalizer *decision.Normalizer
	Builder    *recorder.Builder
	Evidence   EvidenceSink
	StatsFrom  StatsSource
	Usage      UsageCounter
	Watchdog   *license.Watchdog
	Metrics    *metrics.Aggregator
	Health     *health.Checker
	Tracer     *tracing.Tracer
	Logger     *slog.Logger

	// EvidenceEnabled mirrors the recorder config so the stats
	// endpoint can report logger enablement.
	EvidenceEnabled bool
}

func (a *API) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes the uniform error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, gateway.ErrorResponse{Error: message})
}
