package delivery

import (
	"math"

	"cogentcore.org/lab/base/mpi"

	"github.com/SynapticNetworks/gridspike/klog"
)

// WaveformRelax iterates the gap-junction exchange within a single
// min-delay window until every local node's interpolated voltage sample
// stops moving by more than tolerance, or maxIterations is reached.
type WaveformRelax struct {
	comm          *mpi.Comm
	numLocal      int
	tolerance     float64
	maxIterations int
	logger        *klog.Logger

	prev []float32
	cur  []float32
}

// NewWaveformRelax builds a relaxation loop over numLocal local nodes.
func NewWaveformRelax(comm *mpi.Comm, numLocal int, tolerance float64, maxIterations int, logger *klog.Logger) *WaveformRelax {
	if logger == nil {
		logger = klog.Nop()
	}
	return &WaveformRelax{
		comm: comm, numLocal: numLocal, tolerance: tolerance, maxIterations: maxIterations, logger: logger,
		prev: make([]float32, numLocal), cur: make([]float32, numLocal),
	}
}

// Run repeatedly calls sample (which re-estimates every local node's
// interpolated gap-junction voltage given the last globally-exchanged
// vector, writing results into out) and exchanges the result across ranks
// until consecutive iterations agree within tolerance. It returns the
// number of iterations performed and whether the loop converged before
// hitting maxIterations; non-convergence is logged but is not itself an
// error, matching NEST's own "continue with the best available estimate"
// behavior.
func (w *WaveformRelax) Run(sample func(global []float32, out []float32)) (iterations int, converged bool) {
	for i := range w.prev {
		w.prev[i] = 0
	}
	for iterations = 1; iterations <= w.maxIterations; iterations++ {
		sample(w.prev, w.cur)
		if mpi.WorldSize() > 1 {
			w.comm.AllReduceF32(mpi.OpSum, w.cur, nil)
		}

		if w.converged() {
			copy(w.prev, w.cur)
			return iterations, true
		}
		w.prev, w.cur = w.cur, w.prev
	}
	w.logger.Warn("waveform relaxation did not converge", map[string]interface{}{
		"iterations": w.maxIterations,
		"tolerance":  w.tolerance,
	})
	return w.maxIterations, false
}

func (w *WaveformRelax) converged() bool {
	for i := range w.cur {
		if math.Abs(float64(w.cur[i]-w.prev[i])) > w.tolerance {
			return false
		}
	}
	return true
}

// Result returns the last exchanged voltage vector.
func (w *WaveformRelax) Result() []float32 { return w.prev }
