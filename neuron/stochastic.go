package neuron

import (
	"math"

	"github.com/emer/emergent/v2/erand"
)

// hazardRate returns the instantaneous firing hazard (probability per ms)
// given the membrane's distance above threshold, using NEST's escape-noise
// form: rate = exp(slope*(v-threshold) + offset).
func hazardRate(v, threshold, slope, offset float64) float64 {
	return math.Exp(slope*(v-threshold) + offset)
}

// stochasticCrossing draws whether the neuron fires this step given its
// hazard rate and the step size h, using the thread-local RNG stream.
// The crossing probability over one step of duration h is
// 1 - exp(-rate*h), computed via expm1 for small rate*h.
func stochasticCrossing(v, threshold, slope, offset, h float64, thread int) bool {
	rate := hazardRate(v, threshold, slope, offset)
	pFire := -math.Expm1(-rate * h)
	return erand.ZeroOne(thread) < pFire
}
