package param

import "github.com/emer/emergent/v2/erand"

// AliasSampler implements Vose's alias method for O(1) weighted sampling
// from a fixed discrete distribution, built once per target and reused
// across all N draws for that target. Grounded on NEST's vose.h/vose.cpp.
type AliasSampler struct {
	prob  []float64
	alias []int
}

// NewAliasSampler builds a sampler over n outcomes whose relative weights
// are given by weights (need not sum to 1).
func NewAliasSampler(weights []float64) *AliasSampler {
	n := len(weights)
	s := &AliasSampler{prob: make([]float64, n), alias: make([]int, n)}
	if n == 0 {
		return s
	}

	scaled := make([]float64, n)
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		// Degenerate: fall back to uniform weights.
		for i := range scaled {
			scaled[i] = 1
		}
		sum = float64(n)
	} else {
		copy(scaled, weights)
	}

	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, w := range scaled {
		scaled[i] = w * float64(n) / sum
		if scaled[i] < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		l := small[len(small)-1]
		small = small[:len(small)-1]
		g := large[len(large)-1]
		large = large[:len(large)-1]

		s.prob[l] = scaled[l]
		s.alias[l] = g

		scaled[g] = (scaled[g] + scaled[l]) - 1
		if scaled[g] < 1 {
			small = append(small, g)
		} else {
			large = append(large, g)
		}
	}
	for _, g := range large {
		s.prob[g] = 1
	}
	for _, l := range small {
		s.prob[l] = 1
	}
	return s
}

// Draw samples one outcome index in O(1) using the thread's RNG stream.
func (s *AliasSampler) Draw(thread int) int {
	n := len(s.prob)
	if n == 0 {
		return -1
	}
	i := int(erand.UniformMinMax(0, float64(n), thread))
	if i >= n {
		i = n - 1
	}
	if erand.ZeroOne(thread) < s.prob[i] {
		return i
	}
	return s.alias[i]
}
