package metrics

import (
	"sort"
	"sync"
)

// DefaultWindowSize is the number of latency samples kept when no size
// is configured. It matches the in-memory evidence store capacity so
// both windows cover the same stretch of traffic.
const DefaultWindowSize = 2000

// Window is a bounded FIFO of latency samples. Appends are O(1) and
// evict the oldest sample once the capacity is reached; a single mutex
// is enough because appends are brief and append-mostly.
type Window struct {
	mu    sync.Mutex
	buf   []float64
	next  int
	count int
}

// NewWindow creates a Window with the given capacity. Non-positive
// capacities fall back to DefaultWindowSize.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window{buf: make([]float64, capacity)}
}

// Append adds a sample, evicting the oldest when full.
func (w *Window) Append(v float64) {
	w.mu.Lock()
	w.buf[w.next] = v
	w.next = (w.next + 1) % len(w.buf)
	if w.count < len(w.buf) {
		w.count++
	}
	w.mu.Unlock()
}

// Len returns the number of samples currently held.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// snapshotSorted copies the current samples and sorts them.
func (w *Window) snapshotSorted() []float64 {
	w.mu.Lock()
	out := make([]float64, w.count)
	if w.count < len(w.buf) {
		copy(out, w.buf[:w.count])
	} else {
		// Ring is full: oldest sample sits at next.
		n := copy(out, w.buf[w.next:])
		copy(out[n:], w.buf[:w.next])
	}
	w.mu.Unlock()

	sort.Float64s(out)
	return out
}

// Percentile computes the linear-interpolation percentile over the
// current window. p at or below 0 returns the minimum, p at or above
// 100 the maximum. The second return value is false when the window is
// empty, in which case the percentile is undefined.
func (w *Window) Percentile(p float64) (float64, bool) {
	sorted := w.snapshotSorted()
	if len(sorted) == 0 {
		return 0, false
	}
	if p <= 0 {
		return sorted[0], true
	}
	if p >= 100 {
		return sorted[len(sorted)-1], true
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo], true
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo]), true
}

// Max returns the largest sample in the window, false when empty.
func (w *Window) Max() (float64, bool) {
	return w.Percentile(100)
}
