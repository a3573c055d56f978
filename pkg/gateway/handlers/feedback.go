package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"continuum-hq/continuum/pkg/evidence"
	"continuum-hq/continuum/pkg/evidence/recorder"
	"continuum-hq/continuum/pkg/gateway"
)

// Feedback handles POST /api/v1/feedback. The target log id is an
// opaque reference; the store is append-only, so no existence check is
// performed.
func (a *API) Feedback(w http.ResponseWriter, r *http.Request) {
	var req gateway.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if a.Evidence == nil {
		writeError(w, http.StatusServiceUnavailable, "evidence recording is disabled")
		return
	}

	event := &evidence.FeedbackEvent{
		ID:          recorder.NewEventID(),
		Timestamp:   time.Now().UTC(),
		TargetLogID: req.LogID,
		Feedback: evidence.FeedbackScores{
			Accuracy: req.Accuracy,
			Helpful:  req.Helpful,
			Accepted: req.Accepted,
		},
	}

	if err := a.Evidence.RecordFeedback(r.Context(), event); err != nil {
		a.logger().Warn("feedback recording skipped", "error", err, "feedback_id", event.ID)
	}

	writeJSON(w, http.StatusOK, gateway.FeedbackResponse{
		Status:     "success",
		FeedbackID: event.ID,
	})
}
