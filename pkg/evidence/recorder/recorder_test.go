package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"continuum-hq/continuum/pkg/evidence"
)

// fakeStorage is an in-test storage backend with controllable failures.
type fakeStorage struct {
	mu       sync.Mutex
	events   []*evidence.AnalysisEvent
	feedback []*evidence.FeedbackEvent
	failWith error
}

func (f *fakeStorage) StoreEvent(ctx context.Context, event *evidence.AnalysisEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStorage) StoreFeedback(ctx context.Context, event *evidence.FeedbackEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.feedback = append(f.feedback, event)
	return nil
}

func (f *fakeStorage) Stats(ctx context.Context) (*evidence.StorageStats, error) {
	return &evidence.StorageStats{}, nil
}

func (f *fakeStorage) Close() error { return nil }

func (f *fakeStorage) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func testEvent() *evidence.AnalysisEvent {
	return &evidence.AnalysisEvent{
		ID:        NewEventID(),
		Timestamp: time.Now().UTC(),
		Input:     evidence.InputFingerprint{SHA256: "abc", Length: 3},
		Evidence:  evidence.EvidenceRecord{"schema_version": evidence.SchemaVersion},
	}
}

func TestRecorder_WritesEventToLocalStores(t *testing.T) {
	local := &fakeStorage{}
	r := NewRecorder([]evidence.Storage{local}, nil, nil)

	if err := r.RecordEvent(context.Background(), testEvent()); err != nil {
		t.Fatalf("RecordEvent() error: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if local.eventCount() != 1 {
		t.Errorf("local store has %d events, want 1", local.eventCount())
	}
}

func TestRecorder_RemoteFailureAnnotatesMetadata(t *testing.T) {
	local := &fakeStorage{}
	remote := &fakeStorage{failWith: errors.New("api unreachable")}
	r := NewRecorder([]evidence.Storage{local}, remote, nil)

	event := testEvent()
	if err := r.RecordEvent(context.Background(), event); err != nil {
		t.Fatalf("RecordEvent() error: %v", err)
	}
	r.Close()

	if local.eventCount() != 1 {
		t.Fatalf("local store has %d events, want 1 despite remote failure", local.eventCount())
	}
	if got := event.Metadata["remote_write"]; got != "failed" {
		t.Errorf("metadata remote_write = %v, want failed", got)
	}
}

func TestRecorder_RemoteSuccessAnnotatesMetadata(t *testing.T) {
	local := &fakeStorage{}
	remote := &fakeStorage{}
	r := NewRecorder([]evidence.Storage{local}, remote, nil)

	event := testEvent()
	r.RecordEvent(context.Background(), event)
	r.Close()

	if got := event.Metadata["remote_write"]; got != "ok" {
		t.Errorf("metadata remote_write = %v, want ok", got)
	}
	if remote.eventCount() != 1 {
		t.Errorf("remote store has %d events, want 1", remote.eventCount())
	}
}

func TestRecorder_DisabledDropsSilently(t *testing.T) {
	local := &fakeStorage{}
	cfg := DefaultConfig()
	cfg.Enabled = false
	r := NewRecorder([]evidence.Storage{local}, nil, cfg)

	if err := r.RecordEvent(context.Background(), testEvent()); err != nil {
		t.Fatalf("RecordEvent() on disabled recorder: %v", err)
	}
	r.Close()

	if local.eventCount() != 0 {
		t.Errorf("disabled recorder wrote %d events", local.eventCount())
	}
}

func TestRecorder_FullQueueReturnsRecorderError(t *testing.T) {
	// A store that blocks forever so the worker cannot drain.
	blocked := make(chan struct{})
	local := &blockingStorage{release: blocked}

	cfg := DefaultConfig()
	cfg.AsyncBuffer = 1
	r := NewRecorder([]evidence.Storage{local}, nil, cfg)

	// First event occupies the worker, second fills the buffer; one of the
	// subsequent enqueues must fail fast with a RecorderError.
	var recErr *evidence.RecorderError
	ok := false
	for i := 0; i < 4; i++ {
		if err := r.RecordEvent(context.Background(), testEvent()); err != nil {
			if errors.As(err, &recErr) {
				ok = true
			}
			break
		}
		// Give the worker a moment to pick up the first item.
		time.Sleep(10 * time.Millisecond)
	}

	close(blocked)
	r.Close()

	if !ok {
		t.Error("expected a RecorderError from a full queue")
	}
}

func TestRecorder_DrainsQueueOnClose(t *testing.T) {
	local := &fakeStorage{}
	r := NewRecorder([]evidence.Storage{local}, nil, nil)

	const n = 25
	for i := 0; i < n; i++ {
		r.RecordEvent(context.Background(), testEvent())
	}
	r.Close()

	if local.eventCount() != n {
		t.Errorf("after Close() local store has %d events, want %d", local.eventCount(), n)
	}
}

func TestRecorder_RecordsFeedback(t *testing.T) {
	local := &fakeStorage{}
	r := NewRecorder([]evidence.Storage{local}, nil, nil)

	fb := &evidence.FeedbackEvent{
		ID:          NewEventID(),
		Timestamp:   time.Now().UTC(),
		TargetLogID: "some-event",
		Feedback:    evidence.FeedbackScores{Accuracy: 4, Helpful: 5, Accepted: true},
	}
	if err := r.RecordFeedback(context.Background(), fb); err != nil {
		t.Fatalf("RecordFeedback() error: %v", err)
	}
	r.Close()

	local.mu.Lock()
	defer local.mu.Unlock()
	if len(local.feedback) != 1 {
		t.Errorf("local store has %d feedback events, want 1", len(local.feedback))
	}
}

// blockingStorage blocks StoreEvent until release is closed.
type blockingStorage struct {
	release chan struct{}
}

func (b *blockingStorage) StoreEvent(ctx context.Context, event *evidence.AnalysisEvent) error {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func (b *blockingStorage) StoreFeedback(ctx context.Context, event *evidence.FeedbackEvent) error {
	return nil
}

func (b *blockingStorage) Stats(ctx context.Context) (*evidence.StorageStats, error) {
	return &evidence.StorageStats{}, nil
}

func (b *blockingStorage) Close() error { return nil }
