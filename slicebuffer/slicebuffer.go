// Package slicebuffer stores off-grid spike arrivals for precise-timing
// neuron models: a per-neuron priority queue of
// sub-step-stamped arrivals within one delay slice.
package slicebuffer

import (
	"sort"

	"github.com/emer/emergent/v2/ringidx"
)

// Spike is one off-grid arrival: an integer step stamp, a sub-step offset
// in [0, h), and a weight.
type Spike struct {
	Stamp  int64
	Offset float64
	Weight float64
}

// less orders two spikes temporally: earlier stamp first, then smaller
// offset (i.e. earlier within the step) first.
func less(a, b Spike) bool {
	if a.Stamp != b.Stamp {
		return a.Stamp < b.Stamp
	}
	return a.Offset < b.Offset
}

// SliceRingBuffer holds, per lag within the current min-delay window, the
// off-grid arrivals destined for that lag. The cheap push path (AddSpike)
// is an append; PrepareDelivery sorts a lag's slot once, descending by
// time, so GetNextSpike can pop from the tail in O(1).
type SliceRingBuffer struct {
	slots [][]Spike
	idx   ringidx.Idx

	// returnFromRefractory is the single scheduled pseudo-event per
	// neuron that unfreezes the membrane mid-step.
	returnFromRefractory   Spike
	hasReturnFromRefractory bool
}

// New creates a slice ring buffer with minDelay lag slots.
func New(minDelay int) *SliceRingBuffer {
	if minDelay <= 0 {
		minDelay = 1
	}
	b := &SliceRingBuffer{slots: make([][]Spike, minDelay)}
	b.idx = ringidx.Idx{Max: minDelay}
	b.idx.Add(minDelay)
	return b
}

// AddSpike appends an arrival to the slot for lag. Cheap: no sorting here.
func (b *SliceRingBuffer) AddSpike(lag int, s Spike) {
	i := b.idx.Idx(lag)
	b.slots[i] = append(b.slots[i], s)
}

// ScheduleReturnFromRefractory records the single pending
// return-from-refractoriness pseudo-event for this neuron, replacing any
// previously scheduled one.
func (b *SliceRingBuffer) ScheduleReturnFromRefractory(s Spike) {
	b.returnFromRefractory = s
	b.hasReturnFromRefractory = true
}

// ClearReturnFromRefractory drops the pending pseudo-event, if any.
func (b *SliceRingBuffer) ClearReturnFromRefractory() {
	b.hasReturnFromRefractory = false
}

// PrepareDelivery sorts the slot for lag by descending time so that
// GetNextSpike can pop in temporal order from the tail.
func (b *SliceRingBuffer) PrepareDelivery(lag int) {
	i := b.idx.Idx(lag)
	s := b.slots[i]
	sort.Slice(s, func(x, y int) bool { return less(s[y], s[x]) })
}

// GetNextSpike pops the next event (spike or return-from-refractoriness)
// for lag whose stamp does not exceed reqStamp, in temporal order. When a
// spike and the return-from-refractoriness pseudo-event fall on the same
// step, the return event is delivered first. When
// accumulateSimultaneous is true, spikes sharing the same (stamp, offset)
// are merged into a single returned event with summed weight.
//
// ok is false once no more events are available for this lag at or before
// reqStamp.
func (b *SliceRingBuffer) GetNextSpike(lag int, reqStamp int64, accumulateSimultaneous bool) (Spike, bool) {
	i := b.idx.Idx(lag)
	s := b.slots[i]

	haveReturn := b.hasReturnFromRefractory && b.returnFromRefractory.Stamp <= reqStamp
	haveSpike := len(s) > 0 && s[len(s)-1].Stamp <= reqStamp

	switch {
	case haveReturn && haveSpike:
		if b.returnFromRefractory.Stamp <= s[len(s)-1].Stamp {
			ev := b.returnFromRefractory
			b.hasReturnFromRefractory = false
			return ev, true
		}
		return b.popSpike(i, accumulateSimultaneous)
	case haveReturn:
		ev := b.returnFromRefractory
		b.hasReturnFromRefractory = false
		return ev, true
	case haveSpike:
		return b.popSpike(i, accumulateSimultaneous)
	default:
		return Spike{}, false
	}
}

func (b *SliceRingBuffer) popSpike(i int, accumulateSimultaneous bool) (Spike, bool) {
	s := b.slots[i]
	n := len(s)
	ev := s[n-1]
	s = s[:n-1]
	if accumulateSimultaneous {
		for len(s) > 0 {
			next := s[len(s)-1]
			if next.Stamp != ev.Stamp || next.Offset != ev.Offset {
				break
			}
			ev.Weight += next.Weight
			s = s[:len(s)-1]
		}
	}
	b.slots[i] = s
	return ev, true
}

// HasMore reports whether any events remain in the slot for lag.
func (b *SliceRingBuffer) HasMore(lag int) bool {
	i := b.idx.Idx(lag)
	return len(b.slots[i]) > 0
}

// Rotate ends the current slice: the slot for the oldest lag is expected
// to be fully drained by GetNextSpike and is reset for reuse as the new
// tail lag.
func (b *SliceRingBuffer) Rotate() {
	n := len(b.slots)
	b.idx.Shift(1)
	b.idx.Add(1)
	b.slots[b.idx.Idx(n-1)] = nil
}
