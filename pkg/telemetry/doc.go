// Package telemetry groups the observability subsystems: structured
// logging with secret redaction, the decision/latency metrics
// aggregator with its Prometheus exposition, health checking, and
// OpenTelemetry tracing.
//
// Everything exported here is content-free by construction: metrics
// and health snapshots only ever carry aggregates, and the log
// redactor strips credentials before they reach a sink.
package telemetry
