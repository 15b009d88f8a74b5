// Package delivery implements the per-min-delay-window collect/exchange/
// dispatch cycle that moves spike and secondary-event contributions from
// every rank's local sources to every rank's local targets, plus the waveform-relaxation iteration gap junctions need.
//
// Grounded on cogentcore.org/lab/base/mpi's mpi.Comm.AllReduceF32 (see
// decoder/linear.go and decoder/softmax.go's MPI weight-update path in the
// examples pack): each rank contributes into a dense per-(local node,
// receptor) accumulator and the cycle reduces it with mpi.OpSum, the same
// pattern those decoders use for gradient aggregation. The pack's only
// verified MPI primitives are WorldSize, the reduction ops, and
// AllReduceF32/Ssync; there is no confirmed variable-length all-to-all
// primitive, so primary spike delivery is folded into the same dense-
// accumulator scheme secondary events use rather than invented.
package delivery

import (
	"cogentcore.org/lab/base/mpi"

	"github.com/SynapticNetworks/gridspike/kernelerr"
)

// Exchange holds one rank's dense per-(local node, receptor) accumulator
// for a single min-delay window and the MPI communicator used to reduce it
// across ranks.
type Exchange struct {
	comm      *mpi.Comm
	numLocal  int
	receptors int
	send      []float32
	recv      []float32

	resizeLog *ResizeLog
}

// NewExchange builds an exchange buffer sized for numLocal nodes, each
// with receptors receptor ports.
func NewExchange(comm *mpi.Comm, numLocal, receptors int, resizeLog *ResizeLog) *Exchange {
	x := &Exchange{comm: comm, numLocal: numLocal, receptors: receptors, resizeLog: resizeLog}
	x.grow(numLocal, receptors)
	return x
}

func (x *Exchange) slot(localIdx, receptor int) int { return localIdx*x.receptors + receptor }

// grow reallocates the send/recv buffers when numLocal*receptors exceeds
// their length, to the larger of that size and twice the current length,
// never shrinking them below their prior capacity.
func (x *Exchange) grow(numLocal, receptors int) {
	needed := numLocal * receptors
	if needed <= len(x.send) {
		x.numLocal, x.receptors = numLocal, receptors
		return
	}
	capacity := needed
	if c := 2 * len(x.send); c > capacity {
		capacity = c
	}
	x.send = make([]float32, capacity)
	x.recv = make([]float32, capacity)
	x.numLocal, x.receptors = numLocal, receptors
	if x.resizeLog != nil {
		x.resizeLog.Note(int64(capacity) * 4 * 2)
	}
}

// Reset clears the collect-phase accumulator ahead of a new window.
func (x *Exchange) Reset() {
	for i := range x.send {
		x.send[i] = 0
	}
}

// Collect is the "collect" phase: a local source's
// contribution is added into the dense accumulator for its target's
// (local index, receptor) slot.
func (x *Exchange) Collect(targetLocalIdx, receptor int, value float64) {
	x.send[x.slot(targetLocalIdx, receptor)] += float32(value)
}

// Run performs the "exchange" phase: an all-reduce sum across every rank
// (a no-op copy when running single-rank).
func (x *Exchange) Run() {
	if mpi.WorldSize() == 1 {
		copy(x.recv, x.send)
		return
	}
	copy(x.recv, x.send)
	x.comm.AllReduceF32(mpi.OpSum, x.recv, nil)
}

// Dispatch is the "dispatch" phase: apply is called once per (local node,
// receptor) slot with the globally-reduced total for this window.
func (x *Exchange) Dispatch(apply func(localIdx, receptor int, total float64)) {
	for li := 0; li < x.numLocal; li++ {
		for r := 0; r < x.receptors; r++ {
			v := x.recv[x.slot(li, r)]
			if v != 0 {
				apply(li, r, float64(v))
			}
		}
	}
}

// EnsureCapacity is called by the kernel driver whenever the local node or
// receptor count grows between windows.
func (x *Exchange) EnsureCapacity(numLocal, receptors int) {
	if numLocal > x.numLocal || receptors > x.receptors {
		x.grow(numLocal, receptors)
	}
}

// CheckOverflow reports a KernelException if the collect phase produced
// more contributions than the buffer can represent without aliasing.
func CheckOverflow(used, capacity int) error {
	if used > capacity {
		return kernelerr.NewKernelException("delivery", "exchange buffer overflow")
	}
	return nil
}
