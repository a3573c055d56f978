package handlers

import (
	"net/http"

	"continuum-hq/continuum/pkg/gateway"
)

// Root handles GET /: service identity and endpoint map.
func (a *API) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "Continuum API",
		"version": gateway.APIVersion,
		"status":  "active",
		"health":  "/health",
		"stats":   "/api/v1/stats",
	})
}

// HealthCheck handles GET /health: component readiness booleans plus
// the aggregated checker report. Content-free by construction.
func (a *API) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":       "healthy",
		"logger_ready": a.Evidence != nil && a.EvidenceEnabled,
	}

	if a.Health != nil {
		report := a.Health.Check(r.Context())
		body["checks"] = report.Checks
		if !report.Healthy() {
			body["status"] = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, body)
}

// Stats handles GET /api/v1/stats: aggregate event counts and logger
// enablement.
func (a *API) Stats(w http.ResponseWriter, r *http.Request) {
	if a.StatsFrom == nil {
		writeError(w, http.StatusServiceUnavailable, "stats source not available")
		return
	}

	stats, err := a.StatsFrom.Stats(r.Context())
	if err != nil {
		a.logger().Error("stats query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":        a.EvidenceEnabled,
		"total_events":   stats.TotalEvents,
		"total_feedback": stats.TotalFeedback,
		"freq_types":     stats.FreqTypes,
		"decisions":      stats.Decisions,
	})
}

// LicenseStatus handles GET /api/v1/license: the latest watchdog
// status snapshot.
func (a *API) LicenseStatus(w http.ResponseWriter, r *http.Request) {
	if a.Watchdog == nil {
		writeError(w, http.StatusServiceUnavailable, "license watchdog not available")
		return
	}
	writeJSON(w, http.StatusOK, a.Watchdog.Status())
}

// MetricsSnapshot handles GET /api/v1/metrics: counts, rates and
// latency percentiles over the current window.
func (a *API) MetricsSnapshot(w http.ResponseWriter, r *http.Request) {
	if a.Metrics == nil {
		writeError(w, http.StatusServiceUnavailable, "metrics not available")
		return
	}
	writeJSON(w, http.StatusOK, a.Metrics.Snapshot())
}
