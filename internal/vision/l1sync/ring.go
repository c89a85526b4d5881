package l1sync

import "gonum.org/v1/gonum/stat"

// Ring is a fixed-capacity circular buffer of float64 samples. Pushing
// into a full ring overwrites the oldest sample. The backing array is
// allocated once and never escapes.
type Ring struct {
	buf   []float64
	head  int // index of the next write
	count int
}

// NewRing returns an empty ring with the given capacity (minimum 1).
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]float64, capacity)}
}

// Push appends v, evicting the oldest sample when full.
func (r *Ring) Push(v float64) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Len returns the number of stored samples.
func (r *Ring) Len() int { return r.count }

// Cap returns the fixed capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Clear drops all samples without releasing storage.
func (r *Ring) Clear() {
	r.head = 0
	r.count = 0
}

// Mean returns the average of the stored samples, or 0 when empty.
func (r *Ring) Mean() float64 {
	if r.count == 0 {
		return 0
	}
	// Once full the whole backing array is valid; before that the valid
	// samples are the prefix [0, count).
	return stat.Mean(r.buf[:r.count], nil)
}

// Values returns the samples oldest first, as a copy.
func (r *Ring) Values() []float64 {
	out := make([]float64, 0, r.count)
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}
