package history

import (
	"github.com/gammazero/deque"

	"github.com/dvoicu/process-simulator/internal/core"
)

// Window keeps the most recent samples in strict FIFO order, capped at a
// fixed capacity. Push and eviction are O(1) amortized; the stats scan is
// O(n) over a window that is small by configuration.
type Window struct {
	capacity int
	samples  *deque.Deque[core.Sample]
}

// New creates a window holding at most capacity samples.
// A capacity below 1 is raised to 1.
func New(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{
		capacity: capacity,
		samples:  deque.New[core.Sample](),
	}
}

// Push appends a sample, evicting from the front once over capacity
func (w *Window) Push(s core.Sample) {
	w.samples.PushBack(s)
	for w.samples.Len() > w.capacity {
		w.samples.PopFront()
	}
}

// Stats computes max, min and mean over the analog values currently held.
// The second return value is false when the window is empty.
func (w *Window) Stats() (core.WindowStats, bool) {
	n := w.samples.Len()
	if n == 0 {
		return core.WindowStats{}, false
	}

	first := w.samples.At(0).Analog
	stats := core.WindowStats{Max: first, Min: first}
	sum := 0.0
	for i := 0; i < n; i++ {
		v := w.samples.At(i).Analog
		if v > stats.Max {
			stats.Max = v
		}
		if v < stats.Min {
			stats.Min = v
		}
		sum += v
	}
	stats.Mean = sum / float64(n)
	return stats, true
}

// Len returns the number of samples currently held
func (w *Window) Len() int {
	return w.samples.Len()
}

// Capacity returns the maximum number of samples held
func (w *Window) Capacity() int {
	return w.capacity
}

// Clear empties the window; used by reset
func (w *Window) Clear() {
	w.samples.Clear()
}

// Samples returns a copy of the window contents, oldest first
func (w *Window) Samples() []core.Sample {
	out := make([]core.Sample, w.samples.Len())
	for i := range out {
		out[i] = w.samples.At(i)
	}
	return out
}
