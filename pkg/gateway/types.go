package gateway

import "fmt"

// APIVersion is the public API version reported by the root endpoint.
const APIVersion = "2.0.0"

// MaxTextLength is the largest request text the analyze endpoint
// accepts.
const MaxTextLength = 1000

// AnalyzeRequest is the payload of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// Validate checks the request bounds.
func (r *AnalyzeRequest) Validate() error {
	if r.Text == "" {
		return fmt.Errorf("text must not be empty")
	}
	if len(r.Text) > MaxTextLength {
		return fmt.Errorf("text exceeds maximum length of %d", MaxTextLength)
	}
	return nil
}

// AnalyzeResponse is the answer to one analysis. The response may echo
// text back to the caller; only the persisted evidence is content-free.
type AnalyzeResponse struct {
	Original   string  `json:"original"`
	FreqType   string  `json:"freq_type"`
	Confidence float64 `json:"confidence"`
	Scenario   string  `json:"scenario"`

	RepairedText *string `json:"repaired_text,omitempty"`
	RepairNote   *string `json:"repair_note,omitempty"`

	// LogID is the opaque evidence event id, usable as feedback target.
	LogID string `json:"log_id,omitempty"`

	Mode          string `json:"mode,omitempty"`
	DecisionState string `json:"decision_state"`

	SafetyFlag       *string  `json:"safety_flag,omitempty"`
	SafetyConfidence *float64 `json:"safety_confidence,omitempty"`
}

// FeedbackRequest is the payload of POST /api/v1/feedback. LogID is an
// opaque reference; existence is never checked.
type FeedbackRequest struct {
	LogID    string `json:"log_id"`
	Accuracy int    `json:"accuracy"`
	Helpful  int    `json:"helpful"`
	Accepted bool   `json:"accepted"`
}

// Validate checks the feedback bounds. Scores run 0 to 5.
func (r *FeedbackRequest) Validate() error {
	if r.LogID == "" {
		return fmt.Errorf("log_id must not be empty")
	}
	if r.Accuracy < 0 || r.Accuracy > 5 {
		return fmt.Errorf("accuracy must be between 0 and 5")
	}
	if r.Helpful < 0 || r.Helpful > 5 {
		return fmt.Errorf("helpful must be between 0 and 5")
	}
	return nil
}

// FeedbackResponse confirms a recorded feedback event.
type FeedbackResponse struct {
	Status     string `json:"status"`
	FeedbackID string `json:"feedback_id"`
}

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
