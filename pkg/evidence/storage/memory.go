package storage

import (
	"context"
	"sync"

	"continuum-hq/continuum/pkg/evidence"
)

// MemoryStorage implements the Storage interface with a bounded in-memory
// ring of recent events plus cumulative counters. It is the default backend
// and the in-process source of truth for the stats endpoint; counters reset
// only on process restart.
type MemoryStorage struct {
	mu sync.RWMutex

	// events is a size-capped ring of the most recent events.
	events []*evidence.AnalysisEvent
	next   int
	filled bool

	totalEvents   int64
	totalFeedback int64
	freqTypes     map[string]int64
	decisions     map[string]int64
}

// DefaultMemoryCapacity bounds the retained event ring.
const DefaultMemoryCapacity = 2000

// NewMemoryStorage creates an in-memory storage backend retaining at most
// capacity recent events (DefaultMemoryCapacity when capacity <= 0).
func NewMemoryStorage(capacity int) *MemoryStorage {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStorage{
		events:    make([]*evidence.AnalysisEvent, capacity),
		freqTypes: make(map[string]int64),
		decisions: make(map[string]int64),
	}
}

// StoreEvent persists an analysis event, evicting the oldest retained event
// once the ring is full. Counters are cumulative and unaffected by eviction.
func (s *MemoryStorage) StoreEvent(ctx context.Context, event *evidence.AnalysisEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[s.next] = event
	s.next++
	if s.next == len(s.events) {
		s.next = 0
		s.filled = true
	}

	s.totalEvents++
	if ft, ok := event.Evidence["freq_type"].(string); ok && ft != "" {
		s.freqTypes[ft]++
	}
	if ds, ok := event.Metadata["decision_state"].(string); ok && ds != "" {
		s.decisions[ds]++
	}

	return nil
}

// StoreFeedback records a feedback event. Only the count is retained; the
// feedback body lives in the durable backends.
func (s *MemoryStorage) StoreFeedback(ctx context.Context, event *evidence.FeedbackEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalFeedback++
	return nil
}

// Stats returns aggregate counts since process start.
func (s *MemoryStorage) Stats(ctx context.Context) (*evidence.StorageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &evidence.StorageStats{
		TotalEvents:   s.totalEvents,
		TotalFeedback: s.totalFeedback,
		FreqTypes:     make(map[string]int64, len(s.freqTypes)),
		Decisions:     make(map[string]int64, len(s.decisions)),
	}
	for k, v := range s.freqTypes {
		stats.FreqTypes[k] = v
	}
	for k, v := range s.decisions {
		stats.Decisions[k] = v
	}
	return stats, nil
}

// Recent returns up to limit of the most recently stored events, newest
// first. Used by operational endpoints; the returned events are shared and
// must be treated as immutable.
func (s *MemoryStorage) Recent(limit int) []*evidence.AnalysisEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.filled {
		size = len(s.events)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]*evidence.AnalysisEvent, 0, limit)
	idx := s.next - 1
	for len(out) < limit {
		if idx < 0 {
			idx = len(s.events) - 1
		}
		out = append(out, s.events[idx])
		idx--
	}
	return out
}

// Close releases nothing for the memory backend.
func (s *MemoryStorage) Close() error {
	return nil
}
