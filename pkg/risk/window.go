package risk

import "sync"

// Window stores recent observation batches in a fixed-size ring buffer.
// Safe for concurrent access from multiple goroutines.
//
// Writes arrive at scenario-source pace (seconds apart), so RWMutex
// provides optimal read performance without lock-free complexity.
type Window struct {
	mu      sync.RWMutex
	batches []Batch
	size    int
	head    int // next write position
	count   int // number of stored batches
}

// NewWindow creates a new Window with the given batch capacity.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 20
	}
	return &Window{
		batches: make([]Batch, size),
		size:    size,
	}
}

// Push adds a batch to the window.
// If the buffer is full, the oldest batch is overwritten.
func (w *Window) Push(b Batch) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.batches[w.head] = b
	w.head = (w.head + 1) % w.size
	if w.count < w.size {
		w.count++
	}
}

// Latest returns the most recently added batch and whether one exists.
func (w *Window) Latest() (Batch, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.count == 0 {
		return Batch{}, false
	}

	idx := (w.head - 1 + w.size) % w.size
	return w.batches[idx], true
}

// Snapshot returns a copy of all stored batches, newest first.
// The returned slice is owned by the caller and safe to modify.
func (w *Window) Snapshot() []Batch {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make([]Batch, w.count)
	for i := 0; i < w.count; i++ {
		// Walk backwards from head
		idx := (w.head - 1 - i + w.size) % w.size
		result[i] = w.batches[idx]
	}
	return result
}

// Flatten concatenates all windowed observations into one sample,
// oldest batch first. The returned slice is owned by the caller.
func (w *Window) Flatten() []float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	total := 0
	for i := 0; i < w.count; i++ {
		total += len(w.batches[i].Observations)
	}

	sample := make([]float64, 0, total)
	for i := 0; i < w.count; i++ {
		idx := (w.head - w.count + i + w.size) % w.size
		sample = append(sample, w.batches[idx].Observations...)
	}
	return sample
}

// Len returns the number of batches currently stored.
func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.count
}

// Cap returns the maximum capacity of the window.
func (w *Window) Cap() int {
	return w.size
}

// Clear removes all batches from the window.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.batches {
		w.batches[i] = Batch{}
	}
	w.head = 0
	w.count = 0
}
