package metrics

import (
	"sync"
	"time"

	"continuum-hq/continuum/pkg/decision"
)

// Snapshot is a point-in-time view of the aggregator: cumulative
// counts, per-state rates and windowed latency percentiles. All fields
// are aggregates; nothing here can carry analyzed content.
type Snapshot struct {
	TotalRequests  int64 `json:"total_requests"`
	LLMCalls       int64 `json:"llm_calls"`
	OutOfScopeHits int64 `json:"out_of_scope_hits"`

	Decisions     map[string]int64   `json:"decisions"`
	DecisionRates map[string]float64 `json:"decision_rates"`

	LatencyP50 float64 `json:"latency_p50_ms"`
	LatencyP95 float64 `json:"latency_p95_ms"`
	LatencyP99 float64 `json:"latency_p99_ms"`
	LatencyMax float64 `json:"latency_max_ms"`

	WindowSize int       `json:"window_size"`
	StartedAt  time.Time `json:"started_at"`
}

// Aggregator maintains the sliding latency window and the cumulative
// decision counters. Recording is O(1), never blocks on I/O and never
// fails the request; Snapshot computes percentiles on demand.
type Aggregator struct {
	window *Window
	prom   *PromMetrics

	mu             sync.Mutex
	totalRequests  int64
	llmCalls       int64
	outOfScopeHits int64
	decisions      map[decision.State]int64

	startedAt time.Time
}

// NewAggregator creates an Aggregator with the given latency window
// capacity. prom may be nil when Prometheus exposition is disabled.
func NewAggregator(windowSize int, prom *PromMetrics) *Aggregator {
	return &Aggregator{
		window:    NewWindow(windowSize),
		prom:      prom,
		decisions: make(map[decision.State]int64),
		startedAt: time.Now().UTC(),
	}
}

// Record registers one completed analysis.
func (a *Aggregator) Record(state decision.State, latencyMs float64, llmUsed, outOfScopeHit bool) {
	a.window.Append(latencyMs)

	a.mu.Lock()
	a.totalRequests++
	a.decisions[state]++
	if llmUsed {
		a.llmCalls++
	}
	if outOfScopeHit {
		a.outOfScopeHits++
	}
	a.mu.Unlock()

	if a.prom != nil {
		a.prom.Observe(state, latencyMs, llmUsed, outOfScopeHit)
	}
}

// Snapshot returns the current aggregate view. Rates are zero when no
// requests have been recorded.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	snap := Snapshot{
		TotalRequests:  a.totalRequests,
		LLMCalls:       a.llmCalls,
		OutOfScopeHits: a.outOfScopeHits,
		Decisions:      make(map[string]int64, len(a.decisions)),
		DecisionRates:  make(map[string]float64, len(a.decisions)),
		StartedAt:      a.startedAt,
	}
	total := a.totalRequests
	for state, count := range a.decisions {
		snap.Decisions[string(state)] = count
		if total > 0 {
			snap.DecisionRates[string(state)] = float64(count) / float64(total)
		} else {
			snap.DecisionRates[string(state)] = 0
		}
	}
	a.mu.Unlock()

	snap.WindowSize = a.window.Len()
	if p, ok := a.window.Percentile(50); ok {
		snap.LatencyP50 = p
	}
	if p, ok := a.window.Percentile(95); ok {
		snap.LatencyP95 = p
	}
	if p, ok := a.window.Percentile(99); ok {
		snap.LatencyP99 = p
	}
	if m, ok := a.window.Max(); ok {
		snap.LatencyMax = m
	}

	return snap
}
