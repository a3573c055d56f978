package middleware

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDKey is the context key holding the request id.
	RequestIDKey contextKey = "request_id"
)

// GetRequestID returns the request id from the context, empty when
// absent.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
