package metrics

import (
	"sync"
	"testing"
)

func TestPercentileInterpolation(t *testing.T) {
	w := NewWindow(10)
	for _, v := range []float64{10, 20, 30, 40, 100} {
		w.Append(v)
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{50, 30},
		{0, 10},
		{-5, 10},
		{100, 100},
		{150, 100},
		{25, 20},
		{75, 55}, // between 40 and 100
	}

	for _, tt := range tests {
		got, ok := w.Percentile(tt.p)
		if !ok {
			t.Fatalf("Percentile(%v) reported empty window", tt.p)
		}
		if got != tt.want {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPercentileEmptyWindowUndefined(t *testing.T) {
	w := NewWindow(10)
	if _, ok := w.Percentile(95); ok {
		t.Error("empty window percentile must be undefined")
	}
}

func TestPercentileSingleSample(t *testing.T) {
	w := NewWindow(10)
	w.Append(5)

	lo, _ := w.Percentile(0)
	hi, _ := w.Percentile(100)
	if lo != 5 || hi != 5 {
		t.Errorf("single-sample percentiles = %v/%v, want 5/5", lo, hi)
	}
}

func TestWindowEviction(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		w.Append(v)
	}

	if w.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", w.Len())
	}
	// Oldest two samples evicted; window holds 3, 4, 5.
	if min, _ := w.Percentile(0); min != 3 {
		t.Errorf("min = %v, want 3 after eviction", min)
	}
	if max, _ := w.Max(); max != 5 {
		t.Errorf("max = %v, want 5", max)
	}
}

func TestWindowConcurrentAppends(t *testing.T) {
	w := NewWindow(100)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				w.Append(float64(j))
			}
		}()
	}
	wg.Wait()

	if w.Len() != 100 {
		t.Errorf("Len() = %d, want full window of 100", w.Len())
	}
	if _, ok := w.Percentile(95); !ok {
		t.Error("percentile should be defined after appends")
	}
}

func TestWindowDefaultCapacity(t *testing.T) {
	w := NewWindow(0)
	if len(w.buf) != DefaultWindowSize {
		t.Errorf("capacity = %d, want %d", len(w.buf), DefaultWindowSize)
	}
}
