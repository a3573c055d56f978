package engine

import (
	"context"
	"fmt"
)

// Engine analyzes one text and returns a verdict. Implementations must
// be safe for concurrent use; the server shares one instance across
// all request handlers.
type Engine interface {
	// Process analyzes the text and returns the engine's verdict. The
	// context bounds the call; implementations must respect
	// cancellation.
	Process(ctx context.Context, text string) (*Verdict, error)

	// Name identifies the engine implementation for logs and status
	// endpoints.
	Name() string
}

// EngineError wraps a failure from the decision engine with the engine
// name for log attribution.
type EngineError struct {
	Engine string
	Cause  error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Engine, e.Cause)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// NewEngineError creates an EngineError.
func NewEngineError(engine string, cause error) *EngineError {
	return &EngineError{Engine: engine, Cause: cause}
}
