// Package metrics aggregates per-request decision and latency signals:
// a bounded sliding window with linear-interpolation percentiles,
// cumulative decision counters with divide-by-zero-safe rates, and a
// Prometheus exposition of the same signals.
//
// Recording is O(1) and cannot fail a request; snapshots and
// percentiles are computed on demand from a copy of the window.
package metrics
