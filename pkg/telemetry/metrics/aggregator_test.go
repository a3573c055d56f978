package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"continuum-hq/continuum/pkg/decision"
)

func TestAggregatorSnapshot(t *testing.T) {
	a := NewAggregator(100, nil)

	a.Record(decision.StateAllow, 10, false, false)
	a.Record(decision.StateGuide, 20, true, false)
	a.Record(decision.StateGuide, 30, true, false)
	a.Record(decision.StateBlock, 40, false, true)

	snap := a.Snapshot()
	if snap.TotalRequests != 4 {
		t.Errorf("total = %d, want 4", snap.TotalRequests)
	}
	if snap.Decisions["GUIDE"] != 2 {
		t.Errorf("GUIDE count = %d, want 2", snap.Decisions["GUIDE"])
	}
	if snap.DecisionRates["GUIDE"] != 0.5 {
		t.Errorf("GUIDE rate = %v, want 0.5", snap.DecisionRates["GUIDE"])
	}
	if snap.LLMCalls != 2 {
		t.Errorf("llm calls = %d, want 2", snap.LLMCalls)
	}
	if snap.OutOfScopeHits != 1 {
		t.Errorf("oos hits = %d, want 1", snap.OutOfScopeHits)
	}
	if snap.LatencyMax != 40 {
		t.Errorf("max latency = %v, want 40", snap.LatencyMax)
	}
	if snap.LatencyP50 != 25 {
		t.Errorf("p50 = %v, want 25", snap.LatencyP50)
	}
	if snap.WindowSize != 4 {
		t.Errorf("window size = %d, want 4", snap.WindowSize)
	}
}

func TestAggregatorEmptySnapshotNoDivideByZero(t *testing.T) {
	a := NewAggregator(100, nil)

	snap := a.Snapshot()
	if snap.TotalRequests != 0 {
		t.Errorf("total = %d, want 0", snap.TotalRequests)
	}
	for state, rate := range snap.DecisionRates {
		if rate != 0 {
			t.Errorf("rate[%s] = %v, want 0 on empty aggregator", state, rate)
		}
	}
	if snap.LatencyP95 != 0 || snap.LatencyMax != 0 {
		t.Errorf("empty window latencies should be zero, got p95=%v max=%v",
			snap.LatencyP95, snap.LatencyMax)
	}
}

func TestAggregatorPrometheusExport(t *testing.T) {
	prom := NewPromMetrics()
	a := NewAggregator(100, prom)

	a.Record(decision.StateBlock, 12, false, true)
	a.Record(decision.StateAllow, 8, true, false)

	blocked := testutil.ToFloat64(prom.requestsTotal.WithLabelValues("BLOCK"))
	if blocked != 1 {
		t.Errorf("BLOCK counter = %v, want 1", blocked)
	}
	if got := testutil.ToFloat64(prom.llmCallsTotal); got != 1 {
		t.Errorf("llm counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(prom.outOfScopeTotal); got != 1 {
		t.Errorf("oos counter = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(prom.latencySeconds); got != 1 {
		t.Errorf("histogram metric count = %d, want 1", got)
	}
}
