// Package models holds the concrete neuron models layered on top of
// package neuron's shared machinery.
package models

import (
	"math"

	"github.com/SynapticNetworks/gridspike/event"
	"github.com/SynapticNetworks/gridspike/kernelerr"
	"github.com/SynapticNetworks/gridspike/neuron"
)

// RHS is a nonlinear point-neuron right-hand side: given the current state
// vector y (y[0] is always V) and the net synaptic input current, it
// returns dy/dt.
type RHS func(y []float64, input float64) []float64

// Adaptive is the variant-c model: a neuron whose dynamics
// are not linear enough for a closed-form propagator, integrated with an
// adaptive-step Runge-Kutta-Fehlberg-style solver that halves its step on
// a failed local-error estimate and raises kernelerr.SolverFailure if it
// cannot converge within maxHalvings.
type Adaptive struct {
	id     int
	params neuron.Params
	y      []float64 // y[0] = V, y[1:] = auxiliary gating/adaptation variables
	rhs    RHS

	h            float64
	tolerance    float64
	maxHalvings  int
	ringInput    []float64 // accumulated synaptic input for the current step, one per receptor
}

// NewAdaptive constructs an adaptive-solver neuron. y0 is the initial
// state vector (y0[0] is the initial membrane potential).
func NewAdaptive(id int, p neuron.Params, rhs RHS, y0 []float64, tolerance float64, maxHalvings int) *Adaptive {
	y := make([]float64, len(y0))
	copy(y, y0)
	return &Adaptive{
		id:          id,
		params:      p,
		y:           y,
		rhs:         rhs,
		tolerance:   tolerance,
		maxHalvings: maxHalvings,
		ringInput:   make([]float64, p.Receptors),
	}
}

func (a *Adaptive) ID() int { return a.id }

func (a *Adaptive) Calibrate(h float64) error {
	if h <= 0 {
		return kernelerr.NewBadProperty("adaptive", "h", "step size must be positive")
	}
	a.h = h
	return nil
}

// HandleSpike accumulates into the receptor's input and ignores lag: the
// adaptive model has no ring buffer, and its next Update applies the summed
// input to every step of the span it advances, then clears it.
func (a *Adaptive) HandleSpike(e event.SpikeEvent, lag int) {
	r := e.Receptor
	if r < 0 || r >= len(a.ringInput) {
		r = 0
	}
	a.ringInput[r] += e.Weight * float64(e.Multiplicity)
}

func (a *Adaptive) HandleSecondary(e event.SecondaryEvent) error {
	return kernelerr.NewIncompatibleReceptorType("adaptive", int(e.Kind), 0)
}

// Update advances the neuron from step from to step to using adaptive
// sub-stepping within each unit step, reporting a SolverFailure if a step
// cannot be resolved within maxHalvings bisections.
func (a *Adaptive) Update(from, to int64) ([]event.SpikeEvent, error) {
	var spikes []event.SpikeEvent
	var totalInput float64
	for _, v := range a.ringInput {
		totalInput += v
	}

	for step := from; step < to; step++ {
		if err := a.advanceOneStep(a.h, totalInput); err != nil {
			return spikes, err
		}
		if a.y[0] >= a.params.Threshold {
			spikes = append(spikes, event.SpikeEvent{Source: a.id, Stamp: step})
			a.y[0] = a.params.Vreset
		}
	}
	for i := range a.ringInput {
		a.ringInput[i] = 0
	}
	return spikes, nil
}

// advanceOneStep integrates y forward across the whole step h with RK4
// sub-steps, halving the sub-step whenever a Richardson extrapolation
// against two half-steps disagrees with the full sub-step by more than
// tolerance, up to maxHalvings halvings in total.
func (a *Adaptive) advanceOneStep(h, input float64) error {
	remaining, halvings := h, 0
	for remaining > 0 {
		full := rk4(a.y, h, input, a.rhs)
		half1 := rk4(a.y, h/2, input, a.rhs)
		half2 := rk4(half1, h/2, input, a.rhs)

		var errEst float64
		for i := range full {
			d := full[i] - half2[i]
			errEst += d * d
		}
		errEst = math.Sqrt(errEst)

		if errEst <= a.tolerance || halvings == a.maxHalvings {
			if math.IsNaN(half2[0]) || math.IsInf(half2[0], 0) {
				return kernelerr.NewSolverFailure("adaptive", "non-finite state")
			}
			if errEst > a.tolerance {
				return kernelerr.NewSolverFailure("adaptive", "step halving limit exceeded")
			}
			a.y = half2
			remaining -= h
			if h > remaining {
				h = remaining
			}
			continue
		}
		h = h / 2
		halvings++
	}
	return nil
}

// rk4 performs one classical fourth-order Runge-Kutta step of size h.
func rk4(y []float64, h, input float64, rhs RHS) []float64 {
	n := len(y)
	add := func(a, b []float64, scale float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = a[i] + b[i]*scale
		}
		return out
	}

	k1 := rhs(y, input)
	k2 := rhs(add(y, k1, h/2), input)
	k3 := rhs(add(y, k2, h/2), input)
	k4 := rhs(add(y, k3, h), input)

	out := make([]float64, n)
	for i := range out {
		out[i] = y[i] + (h/6)*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}

func (a *Adaptive) Status() map[string]interface{} {
	return map[string]interface{}{"V_m": a.y[0], "V_th": a.params.Threshold}
}

func (a *Adaptive) SetStatus(m map[string]interface{}) error {
	if v, ok := m["V_th"].(float64); ok {
		a.params.Threshold = v
	}
	return nil
}
