package models

import (
	"sort"

	"github.com/SynapticNetworks/gridspike/event"
	"github.com/SynapticNetworks/gridspike/kernelerr"
	"github.com/SynapticNetworks/gridspike/neuron"
	"github.com/SynapticNetworks/gridspike/propagator"
	"github.com/SynapticNetworks/gridspike/slicebuffer"
)

// Precise is the variant-d model: off-grid spike
// timing, buffered per receptor in a slicebuffer.SliceRingBuffer, with
// sub-step propagation between consecutive off-grid events and threshold
// crossings located by neuron.InterpolateCrossing rather than only being
// detected at step boundaries.
type Precise struct {
	*neuron.Base
	thread   int
	order    neuron.ThresholdInterpOrder
	slices   []*slicebuffer.SliceRingBuffer
	accumSim bool // merge simultaneous arrivals at the same (stamp, offset)

	refractoryUntil float64 // absolute ms since epoch; <=currentMS means not refractory
	currentMS       float64
}

// NewPrecise constructs a precise-timing neuron.
func NewPrecise(id int, p neuron.Params, thread int) (*Precise, error) {
	base, err := neuron.NewBase(id, "iaf_psc_alpha_presc", p)
	if err != nil {
		return nil, err
	}
	slices := make([]*slicebuffer.SliceRingBuffer, p.Receptors)
	for i := range slices {
		slices[i] = slicebuffer.New(1)
	}
	return &Precise{Base: base, thread: thread, order: p.InterpOrder, slices: slices, accumSim: true}, nil
}

// HandleSpike overrides Base.HandleSpike: off-grid arrivals go to the
// per-receptor slice buffer, keyed by their sub-step offset, instead of
// being summed into an on-grid ring buffer slot.
func (n *Precise) HandleSpike(e event.SpikeEvent, lag int) {
	r := e.Receptor
	if r < 0 || r >= len(n.slices) {
		r = 0
	}
	n.slices[r].AddSpike(lag, slicebuffer.Spike{
		Stamp:  e.DeliveryStep(),
		Offset: e.Offset,
		Weight: e.Weight * float64(e.Multiplicity),
	})
}

type mergedEvent struct {
	receptor int
	spike    slicebuffer.Spike
}

// popAll drains every event buffered for lag across all receptors, in
// globally ascending (stamp, offset) order, by k-way merging the
// per-receptor temporally-ordered streams slicebuffer.GetNextSpike already
// produces.
func (n *Precise) popAll(lag int, step int64) []mergedEvent {
	pending := make([]*mergedEvent, len(n.slices))
	for r, s := range n.slices {
		s.PrepareDelivery(lag)
		if sp, ok := s.GetNextSpike(lag, step, n.accumSim); ok {
			pending[r] = &mergedEvent{receptor: r, spike: sp}
		}
	}

	var out []mergedEvent
	for {
		best := -1
		for r, p := range pending {
			if p == nil {
				continue
			}
			if best == -1 || p.spike.Stamp < pending[best].spike.Stamp ||
				(p.spike.Stamp == pending[best].spike.Stamp && p.spike.Offset < pending[best].spike.Offset) {
				best = r
			}
		}
		if best == -1 {
			break
		}
		out = append(out, *pending[best])
		if sp, ok := n.slices[best].GetNextSpike(lag, step, n.accumSim); ok {
			pending[best] = &mergedEvent{receptor: best, spike: sp}
		} else {
			pending[best] = nil
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].spike.Offset < out[j].spike.Offset })
	return out
}

// Update advances the neuron sub-step by sub-step between off-grid
// arrivals, locating any threshold crossing with sub-step precision.
func (n *Precise) Update(from, to int64) ([]event.SpikeEvent, error) {
	h := n.H()
	var spikes []event.SpikeEvent

	for step := from; step < to; step++ {
		n.currentMS = float64(step) * h
		events := n.popAll(0, step)

		tLocal := 0.0
		vPrev := n.V()
		for _, me := range events {
			dt := me.spike.Offset - tLocal
			if dt < 0 {
				dt = 0
			}
			if n.currentMS+tLocal < n.refractoryUntil {
				tLocal = me.spike.Offset
				n.applyImpulse(me.receptor, me.spike.Weight, 0)
				continue
			}
			vPrev = n.V()
			slope0 := n.Derivative()
			n.propagateResidual(dt)
			n.applyImpulse(me.receptor, me.spike.Weight, dt)
			tLocal = me.spike.Offset

			if spiked, offset := n.maybeFire(vPrev, slope0, tLocal, dt); spiked {
				spikes = append(spikes, event.SpikeEvent{Source: n.ID(), Stamp: step, Offset: offset})
				n.refractoryUntil = n.currentMS + offset + n.RefractoryMS()
			}
		}

		remaining := h - tLocal
		if remaining > 0 && n.currentMS+tLocal >= n.refractoryUntil {
			vPrev = n.V()
			slope0 := n.Derivative()
			n.propagateResidual(remaining)
			if spiked, offset := n.maybeFire(vPrev, slope0, h, remaining); spiked {
				spikes = append(spikes, event.SpikeEvent{Source: n.ID(), Stamp: step, Offset: offset})
				n.refractoryUntil = n.currentMS + offset + n.RefractoryMS()
			}
		}
		for _, s := range n.slices {
			s.Rotate()
		}
	}
	return spikes, nil
}

// applyImpulse adds a weighted arrival directly into the named receptor's
// synaptic current, decayed by the elapsed sub-step dt since the last
// event (approximating the arrival as instantaneous at its offset).
func (n *Precise) applyImpulse(receptor int, weight, dt float64) {
	n.AddSynCurrentImpulse(receptor, weight, dt)
}

// propagateResidual advances V by dt ms using ad-hoc propagator
// coefficients for the residual interval, the same technique variant b
// uses for its mid-step refractory return.
func (n *Precise) propagateResidual(dt float64) {
	if dt <= 0 {
		return
	}
	n.StepResidual(dt, func(tauSyn float64) propagator.Coeffs {
		return propagator.AdHocResidual(tauSyn, n.TauM(), n.C(), dt)
	})
}

// maybeFire checks whether V has crossed threshold during the just-
// propagated sub-interval of duration dt ending at tEnd (the event's
// absolute offset within the current step) and, if so, locates the
// crossing offset via interpolation and resets V. slope0 is dV/dt at the
// start of the sub-interval, captured by the caller before propagation.
func (n *Precise) maybeFire(vPrev, slope0, tEnd, dt float64) (bool, float64) {
	v := n.V()
	if v < n.Threshold() {
		return false, 0
	}
	if dt <= 0 {
		n.ResetV()
		return true, tEnd
	}
	slope1 := n.Derivative()
	offset, _ := neuron.InterpolateCrossing(n.order, vPrev, v, n.Threshold(), dt, slope0, slope1)
	n.ResetV()
	return true, tEnd - dt + offset
}

func (n *Precise) HandleSecondary(e event.SecondaryEvent) error {
	return kernelerr.NewIncompatibleReceptorType("iaf_psc_alpha_presc", int(e.Kind), 0)
}

func init() {
	neuron.Register("iaf_psc_alpha_presc", func(id int, p neuron.Params, thread int) (neuron.Node, error) {
		return NewPrecise(id, p, thread)
	})
}
