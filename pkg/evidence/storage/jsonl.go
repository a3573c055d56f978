package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"continuum-hq/continuum/pkg/evidence"
)

// JSONLStorage appends events to day-bucketed JSONL files in a local
// directory (analysis_2006-01-02.jsonl, feedback_2006-01-02.jsonl). The
// directory doubles as the working tree for the optional git mirror.
type JSONLStorage struct {
	dir    string
	mu     sync.Mutex
	logger *slog.Logger

	// onWrite, when set, is invoked after each successful append. The git
	// mirror hooks in here to schedule a push.
	onWrite func()
}

// NewJSONLStorage creates the log directory if needed and returns a
// JSONL-backed storage.
func NewJSONLStorage(dir string) (*JSONLStorage, error) {
	if dir == "" {
		return nil, evidence.NewStorageError("jsonl", "init", fmt.Errorf("log directory not configured"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, evidence.NewStorageError("jsonl", "init", err)
	}

	return &JSONLStorage{
		dir:    dir,
		logger: slog.Default().With("component", "evidence.storage.jsonl"),
	}, nil
}

// SetWriteHook registers a callback invoked after each successful append.
func (s *JSONLStorage) SetWriteHook(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWrite = hook
}

// Dir returns the log directory path.
func (s *JSONLStorage) Dir() string {
	return s.dir
}

// StoreEvent appends one analysis event to today's analysis log file.
func (s *JSONLStorage) StoreEvent(ctx context.Context, event *evidence.AnalysisEvent) error {
	return s.appendLine("analysis", event.Timestamp, event)
}

// StoreFeedback appends one feedback event to today's feedback log file.
func (s *JSONLStorage) StoreFeedback(ctx context.Context, event *evidence.FeedbackEvent) error {
	return s.appendLine("feedback", event.Timestamp, event)
}

// Stats is not served from the JSONL backend; the memory or SQLite backend
// is the stats source. Returns empty stats.
func (s *JSONLStorage) Stats(ctx context.Context) (*evidence.StorageStats, error) {
	return &evidence.StorageStats{
		FreqTypes: map[string]int64{},
		Decisions: map[string]int64{},
	}, nil
}

// Close releases nothing; files are opened per append.
func (s *JSONLStorage) Close() error {
	return nil
}

func (s *JSONLStorage) appendLine(kind string, ts time.Time, v any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	name := fmt.Sprintf("%s_%s.jsonl", kind, ts.UTC().Format("2006-01-02"))
	path := filepath.Join(s.dir, name)

	line, err := json.Marshal(v)
	if err != nil {
		return evidence.NewStorageError("jsonl", "marshal", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return evidence.NewStorageError("jsonl", "open", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return evidence.NewStorageError("jsonl", "append", err)
	}

	if s.onWrite != nil {
		s.onWrite()
	}
	return nil
}
