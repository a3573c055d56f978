// Package tracing sets up OpenTelemetry tracing with an OTLP gRPC
// exporter. Spans carry decision signals only; analyzed text never
// appears in span names or attributes.
package tracing
