package neuron

import (
	"github.com/SynapticNetworks/gridspike/event"
	"github.com/SynapticNetworks/gridspike/propagator"
)

// RefractoryMode distinguishes two on-grid integration variants: variant a
// never interpolates inside the refractory period, waiting until a full
// step has elapsed; variant b detects a refractory period ending partway
// through a step and applies a second, ad-hoc partial propagation for the
// residual so the neuron resumes integrating within the same step it
// became eligible again.
type RefractoryMode int

const (
	RefractoryWholeStep RefractoryMode = iota // variant a
	RefractoryMidStepReturn                   // variant b
)

// IAF is the linear integrate-and-fire model driven entirely by closed-
// form propagator coefficients.
type IAF struct {
	*Base
	mode   RefractoryMode
	thread int
}

// NewIAF constructs a linear integrate-and-fire node.
func NewIAF(id int, p Params, mode RefractoryMode, thread int) (*IAF, error) {
	base, err := NewBase(id, "iaf", p)
	if err != nil {
		return nil, err
	}
	return &IAF{Base: base, mode: mode, thread: thread}, nil
}

// Update implements Node.Update for the linear variants.
func (n *IAF) Update(from, to int64) ([]event.SpikeEvent, error) {
	window := int(to - from)
	if window <= 0 {
		return nil, nil
	}
	n.resizeRingBuffers(window)

	var spikes []event.SpikeEvent
	input := make([]float64, len(n.ringBufs))
	for step := from; step < to; step++ {
		for r, rb := range n.ringBufs {
			input[r] = rb.Rotate()
		}

		var fired bool
		switch {
		case n.state.RefractoryRemaining > 0 && n.mode == RefractoryMidStepReturn && n.state.RefractoryRemaining < n.h:
			fired = n.stepMidRefractoryReturn(input)
		case n.state.RefractoryRemaining > 0:
			n.holdRefractory(input)
			fired = false
		default:
			fired = n.integrateStep(input)
		}

		if fired {
			n.state.LastSpikeStep = step
			onSpikeSFA(&n.state, n.params.SFA)
			spikes = append(spikes, event.SpikeEvent{
				Source: n.id,
				Stamp:  step,
			})
			n.state.V = n.params.Vreset
			n.state.RefractoryRemaining = n.params.RefractoryMS
		}
	}
	return spikes, nil
}

// holdRefractory advances synaptic current state without integrating V
// for one refractory step: every refractory step in variant a, and in
// variant b each step until less than a full step of refractoriness remains.
func (n *IAF) holdRefractory(input []float64) {
	n.state.RefractoryRemaining -= n.h
	if n.state.RefractoryRemaining < 0 {
		n.state.RefractoryRemaining = 0
	}
	for r := range n.state.SynCurrent {
		n.state.SynCurrent[r] = n.state.SynCurrent[r]*n.synDecay[r] + input[r]
	}
}

// stepMidRefractoryReturn splits the current step at the instant the
// refractory period ends, holding V at reset for the first part and
// integrating normally, with ad-hoc coefficients, for the residual.
func (n *IAF) stepMidRefractoryReturn(input []float64) bool {
	dtResidual := n.h - n.state.RefractoryRemaining
	n.state.RefractoryRemaining = 0

	newV := expNeg(dtResidual/n.params.TauM)*(n.state.V-n.params.ELeak) + n.params.ELeak
	for r, tauSyn := range n.params.ReceptorTauSyn {
		partial := propagator.AdHocResidual(tauSyn, n.params.TauM, n.params.C, dtResidual)
		newV += partial.P31*input[r] + partial.P32*n.state.SynCurrent[r]
		decay := expNeg(dtResidual / tauSyn)
		n.state.SynCurrent[r] = n.state.SynCurrent[r]*decay + input[r]
	}
	adapt := decaySFA(&n.state, n.sfaP)
	newV -= adapt
	n.state.V = newV

	return n.checkThreshold()
}

// integrateStep performs one full step of linear propagation and returns
// whether the neuron crossed threshold.
func (n *IAF) integrateStep(input []float64) bool {
	newV := n.pLeak*(n.state.V-n.params.ELeak) + n.params.ELeak
	for r := range n.ringBufs {
		newV += n.coeffs[r].P31*input[r] + n.coeffs[r].P32*n.state.SynCurrent[r]
	}
	adapt := decaySFA(&n.state, n.sfaP)
	newV -= adapt
	for r := range n.state.SynCurrent {
		n.state.SynCurrent[r] = n.state.SynCurrent[r]*n.synDecay[r] + input[r]
	}
	n.state.V = newV
	return n.checkThreshold()
}

func (n *IAF) checkThreshold() bool {
	if n.params.Stochastic {
		return stochasticCrossing(n.state.V, n.params.Threshold, n.params.HazardSlope, n.params.HazardOffset, n.h, n.thread)
	}
	return n.state.V >= n.params.Threshold
}
