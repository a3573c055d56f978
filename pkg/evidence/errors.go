package evidence

import "fmt"

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("memory", "sqlite", "github", etc.)
	Operation string // Operation that failed ("store_event", "stats", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// RecorderError represents an error during event recording.
type RecorderError struct {
	EventID string // Analysis event ID
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *RecorderError) Error() string {
	if e.EventID != "" {
		return fmt.Sprintf("recorder error [event_id=%s]: %v", e.EventID, e.Cause)
	}
	return fmt.Sprintf("recorder error: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RecorderError) Unwrap() error {
	return e.Cause
}

// NewRecorderError creates a new RecorderError.
func NewRecorderError(eventID string, cause error) *RecorderError {
	return &RecorderError{
		EventID: eventID,
		Cause:   cause,
	}
}

// MirrorError represents an error during git mirror synchronization.
type MirrorError struct {
	Operation string // Operation that failed ("clone", "pull", "commit", "push")
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *MirrorError) Error() string {
	return fmt.Sprintf("mirror error [operation=%s]: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *MirrorError) Unwrap() error {
	return e.Cause
}

// NewMirrorError creates a new MirrorError.
func NewMirrorError(operation string, cause error) *MirrorError {
	return &MirrorError{
		Operation: operation,
		Cause:     cause,
	}
}
