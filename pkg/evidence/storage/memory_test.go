package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"continuum-hq/continuum/pkg/evidence"
)

func memEvent(id, freqType, decision string) *evidence.AnalysisEvent {
	return &evidence.AnalysisEvent{
		ID:        id,
		Timestamp: time.Now().UTC(),
		Input:     evidence.InputFingerprint{SHA256: "fp", Length: 4},
		Evidence:  evidence.EvidenceRecord{"freq_type": freqType},
		Metadata:  map[string]any{"decision_state": decision},
	}
}

func TestMemoryStorage_StatsCounts(t *testing.T) {
	s := NewMemoryStorage(10)
	ctx := context.Background()

	s.StoreEvent(ctx, memEvent("a", "Anxious", "ALLOW"))
	s.StoreEvent(ctx, memEvent("b", "Anxious", "GUIDE"))
	s.StoreEvent(ctx, memEvent("c", "Unknown", "BLOCK"))
	s.StoreFeedback(ctx, &evidence.FeedbackEvent{ID: "f1", TargetLogID: "a"})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}

	if stats.TotalEvents != 3 {
		t.Errorf("TotalEvents = %d, want 3", stats.TotalEvents)
	}
	if stats.TotalFeedback != 1 {
		t.Errorf("TotalFeedback = %d, want 1", stats.TotalFeedback)
	}
	if stats.FreqTypes["Anxious"] != 2 {
		t.Errorf("FreqTypes[Anxious] = %d, want 2", stats.FreqTypes["Anxious"])
	}
	if stats.Decisions["BLOCK"] != 1 {
		t.Errorf("Decisions[BLOCK] = %d, want 1", stats.Decisions["BLOCK"])
	}
}

func TestMemoryStorage_EvictionKeepsCounters(t *testing.T) {
	s := NewMemoryStorage(4)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		s.StoreEvent(ctx, memEvent(fmt.Sprintf("ev-%d", i), "Calm", "ALLOW"))
	}

	stats, _ := s.Stats(ctx)
	if stats.TotalEvents != 10 {
		t.Errorf("TotalEvents = %d, want 10 (eviction must not reset counters)", stats.TotalEvents)
	}

	recent := s.Recent(0)
	if len(recent) != 4 {
		t.Fatalf("Recent() returned %d events, want 4", len(recent))
	}
	// Newest first.
	if recent[0].ID != "ev-9" {
		t.Errorf("Recent()[0].ID = %s, want ev-9", recent[0].ID)
	}
	if recent[3].ID != "ev-6" {
		t.Errorf("Recent()[3].ID = %s, want ev-6", recent[3].ID)
	}
}

func TestMemoryStorage_RecentPartialWindow(t *testing.T) {
	s := NewMemoryStorage(10)
	ctx := context.Background()

	s.StoreEvent(ctx, memEvent("one", "Calm", "ALLOW"))
	s.StoreEvent(ctx, memEvent("two", "Calm", "ALLOW"))

	recent := s.Recent(5)
	if len(recent) != 2 {
		t.Fatalf("Recent(5) returned %d events, want 2", len(recent))
	}
	if recent[0].ID != "two" || recent[1].ID != "one" {
		t.Errorf("Recent() order wrong: %s, %s", recent[0].ID, recent[1].ID)
	}
}

func TestMemoryStorage_ConcurrentAppends(t *testing.T) {
	s := NewMemoryStorage(16)
	ctx := context.Background()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				s.StoreEvent(ctx, memEvent(fmt.Sprintf("g%d-%d", g, i), "Calm", "ALLOW"))
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	stats, _ := s.Stats(ctx)
	if stats.TotalEvents != 400 {
		t.Errorf("TotalEvents = %d, want 400", stats.TotalEvents)
	}
}
