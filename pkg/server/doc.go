// Package server provides the HTTP API server for the audit gateway.
//
// This package ties together the gateway handlers and middleware and
// provides server lifecycle management including start, graceful
// shutdown, and OS signal handling (SIGTERM, SIGINT).
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "continuum-hq/continuum/pkg/config"
//	    "continuum-hq/continuum/pkg/gateway/handlers"
//	    "continuum-hq/continuum/pkg/server"
//	)
//
//	api := &handlers.API{ /* wired dependencies */ }
//	srv := server.NewServer(&cfg.Server, api, nil, logger)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - GET  /                 - Service identity and endpoint map
//   - GET  /health           - Health report with per-component checks
//   - POST /api/v1/analyze   - Analyze a text and record evidence
//   - POST /api/v1/feedback  - Record feedback for a prior analysis
//   - GET  /api/v1/stats     - Aggregate audit trail counts
//   - GET  /api/v1/license   - Current license validation status
//   - GET  /api/v1/metrics   - Windowed request metrics snapshot
//   - GET  /metrics          - Prometheus exposition (when enabled)
//
// # Middleware Chain
//
// Requests pass through the following middleware (outermost to
// innermost):
//  1. RequestID: attaches a unique id for tracing
//  2. Recovery: turns panics into a 500 response
//  3. Logging: one structured line per request
//  4. CORS: cross-origin headers (when enabled)
//  5. Body limit: caps request body size
//
// # Graceful Shutdown
//
// Start blocks until the context is cancelled, a shutdown signal
// arrives, or RequestShutdown is called. Shutdown stops accepting new
// connections and waits for active ones up to the configured timeout.
package server
