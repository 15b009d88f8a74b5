// Package ringbuffer implements the per-neuron lag-indexed accumulator for
// spikes and currents.
//
// Lag-index bookkeeping is delegated to github.com/emer/emergent/v2/ringidx
// rather than hand-rolled modulo arithmetic: ringidx.Idx already implements
// exactly the "fixed-size window that rotates, oldest slot recycled"
// contract this buffer needs.
package ringbuffer

import "github.com/emer/emergent/v2/ringidx"

// RingBuffer is an ordered sequence of min_delay slots, one per lag, with
// additive accumulation. The accumulator's numeric type
// matches the channel it serves (conductance, current, or weight sum); all
// are represented as float64 here, with the caller choosing the unit.
type RingBuffer struct {
	data []float64
	idx  ringidx.Idx
}

// New creates a ring buffer with minDelay slots, all zeroed.
func New(minDelay int) *RingBuffer {
	if minDelay <= 0 {
		minDelay = 1
	}
	rb := &RingBuffer{data: make([]float64, minDelay)}
	rb.idx = ringidx.Idx{Max: minDelay}
	rb.idx.Add(minDelay)
	return rb
}

// Resize grows or shrinks the buffer to minDelay slots, preserving
// existing content where possible and zero-filling new slots.
func (rb *RingBuffer) Resize(minDelay int) {
	if minDelay <= 0 {
		minDelay = 1
	}
	fresh := make([]float64, minDelay)
	n := minDelay
	if len(rb.data) < n {
		n = len(rb.data)
	}
	for lag := 0; lag < n; lag++ {
		fresh[lag] = rb.GetValue(lag)
	}
	rb.data = fresh
	rb.idx = ringidx.Idx{Max: minDelay}
	rb.idx.Add(minDelay)
}

// AddValue accumulates v into the slot for lag.
func (rb *RingBuffer) AddValue(lag int, v float64) {
	rb.data[rb.idx.Idx(lag)] += v
}

// GetValue reads (without consuming) the slot for lag.
func (rb *RingBuffer) GetValue(lag int) float64 {
	return rb.data[rb.idx.Idx(lag)]
}

// Clear zeroes every slot without changing the buffer's length.
func (rb *RingBuffer) Clear() {
	for i := range rb.data {
		rb.data[i] = 0
	}
}

// Rotate ends the current slice: slot 0 is drained and returned, the
// remaining slots shift down by one, and the tail receives a zeroed slot.
func (rb *RingBuffer) Rotate() float64 {
	drained := rb.GetValue(0)
	n := len(rb.data)
	rb.idx.Shift(1)
	rb.idx.Add(1)
	rb.data[rb.idx.Idx(n-1)] = 0
	return drained
}

// Len reports the number of lag slots the buffer currently holds.
func (rb *RingBuffer) Len() int { return len(rb.data) }
