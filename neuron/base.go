package neuron

import (
	"math"

	"github.com/SynapticNetworks/gridspike/event"
	"github.com/SynapticNetworks/gridspike/kernelerr"
	"github.com/SynapticNetworks/gridspike/propagator"
	"github.com/SynapticNetworks/gridspike/ringbuffer"
)

// Base is the shared machinery every on-grid variant (a and b) embeds:
// per-receptor ring buffers, cached propagator coefficients, and the
// common Status/SetStatus/HandleSpike/HandleSecondary implementations.
// Variant c and d models in neuron/models compose their own buffering but
// reuse Params/State and the SFA/stochastic helpers below.
type Base struct {
	id     int
	name   string
	params Params
	state  State

	h        float64
	coeffs   []propagator.Coeffs // per receptor, from Calibrate
	pLeak    float64             // exp(-h/TauM), from Calibrate
	synDecay []float64           // per receptor, exp(-h/TauSyn)
	sfaP     []float64           // per SFA channel, exp(-h/Tau)

	ringBufs []*ringbuffer.RingBuffer
}

// NewBase constructs a Base with id and the given parameters, after
// validating them.
func NewBase(id int, name string, p Params) (*Base, error) {
	if err := p.Validate(name); err != nil {
		return nil, err
	}
	b := &Base{id: id, name: name, params: p, state: NewState(p)}
	b.ringBufs = make([]*ringbuffer.RingBuffer, p.Receptors)
	for i := range b.ringBufs {
		b.ringBufs[i] = ringbuffer.New(1)
	}
	return b, nil
}

func (b *Base) ID() int { return b.id }

// Calibrate recomputes every h-derived coefficient.
func (b *Base) Calibrate(h float64) error {
	if h <= 0 {
		return kernelerr.NewBadProperty(b.name, "h", "step size must be positive")
	}
	b.h = h
	b.coeffs = make([]propagator.Coeffs, b.params.Receptors)
	b.synDecay = make([]float64, b.params.Receptors)
	for i, tauSyn := range b.params.ReceptorTauSyn {
		b.coeffs[i] = propagator.Compute(tauSyn, b.params.TauM, b.params.C, h)
		b.synDecay[i] = expNeg(h / tauSyn)
	}
	b.pLeak = expNeg(h / b.params.TauM)
	b.sfaP = make([]float64, len(b.params.SFA))
	for i, ch := range b.params.SFA {
		b.sfaP[i] = expNeg(h / ch.Tau)
	}
	return nil
}

// resizeRingBuffers sets the lag-capacity of every receptor buffer to a
// window of n steps, growing or shrinking it as needed.
func (b *Base) resizeRingBuffers(n int) {
	for _, rb := range b.ringBufs {
		if rb.Len() != n {
			rb.Resize(n)
		}
	}
}

// HandleSpike accumulates a weighted spike into the node's ring buffer for
// its receptor at the given lag.
func (b *Base) HandleSpike(e event.SpikeEvent, lag int) {
	r := e.Receptor
	if r < 0 || r >= len(b.ringBufs) {
		r = 0
	}
	b.ringBufs[r].AddValue(lag, e.Weight*float64(e.Multiplicity))
}

// HandleSecondary is unimplemented on the plain on-grid base: these models
// only ever act as discrete-spike sources. The Precise model in
// neuron/models overrides HandleSecondary and also rejects every kind.
func (b *Base) HandleSecondary(e event.SecondaryEvent) error {
	return kernelerr.NewIncompatibleReceptorType(b.name, int(e.Kind), int(event.KindSlowInhibitoryCurrent))
}

// Status reports the node's settable and read-only properties as a plain
// map that callers can inspect or serialize without a type switch.
func (b *Base) Status() map[string]interface{} {
	return map[string]interface{}{
		"V_m":       b.state.V,
		"tau_m":     b.params.TauM,
		"C_m":       b.params.C,
		"E_L":       b.params.ELeak,
		"V_th":      b.params.Threshold,
		"V_reset":   b.params.Vreset,
		"t_ref":     b.params.RefractoryMS,
		"receptors": b.params.Receptors,
	}
}

// SetStatus applies a partial property update, validating the resulting
// parameter set as a whole before committing any field.
// E_L updates use the shift rule rather than a bare assignment; V_th or
// V_reset supplied in the same update replace the shifted values.
func (b *Base) SetStatus(m map[string]interface{}) error {
	next := b.params
	state := b.state
	if v, ok := m["E_L"].(float64); ok {
		next.ShiftELeak(v, &state)
	}
	if v, ok := m["tau_m"].(float64); ok {
		next.TauM = v
	}
	if v, ok := m["C_m"].(float64); ok {
		next.C = v
	}
	if v, ok := m["V_th"].(float64); ok {
		next.Threshold = v
	}
	if v, ok := m["V_reset"].(float64); ok {
		next.Vreset = v
	}
	if v, ok := m["t_ref"].(float64); ok {
		next.RefractoryMS = v
	}
	if err := next.Validate(b.name); err != nil {
		return err
	}
	b.params = next
	b.state.V = state.V
	return nil
}

// The accessors below let neuron/models compose Base without depending on
// its unexported fields: variant c and d models embed *Base for
// Calibrate/Status/SetStatus but drive their own Update loop.

func (b *Base) H() float64             { return b.h }
func (b *Base) V() float64             { return b.state.V }
func (b *Base) TauM() float64          { return b.params.TauM }
func (b *Base) C() float64             { return b.params.C }
func (b *Base) Threshold() float64     { return b.params.Threshold }
func (b *Base) RefractoryMS() float64  { return b.params.RefractoryMS }
func (b *Base) ResetV()                { b.state.V = b.params.Vreset }

// Derivative returns dV/dt at the current state, from the membrane
// equation dV/dt = -(V-E_L)/tau_m + I_syn/C. Used by precise-timing models
// to supply the tangent samples the quadratic and cubic threshold-
// crossing interpolators need.
func (b *Base) Derivative() float64 {
	isyn := 0.0
	for _, c := range b.state.SynCurrent {
		isyn += c
	}
	return -(b.state.V-b.params.ELeak)/b.params.TauM + isyn/b.params.C
}

// AddSynCurrentImpulse applies a weighted off-grid arrival to receptor's
// synaptic current, decaying the existing current by dt ms first (used by
// the precise-timing model between off-grid events within one step).
func (b *Base) AddSynCurrentImpulse(receptor int, weight, dt float64) {
	if receptor < 0 || receptor >= len(b.state.SynCurrent) {
		receptor = 0
	}
	decay := expNeg(dt / b.params.ReceptorTauSyn[receptor])
	b.state.SynCurrent[receptor] = b.state.SynCurrent[receptor]*decay + weight
}

// StepResidual advances V by dt ms using per-receptor coefficients
// produced by coeffsFor for the residual interval, driven only by the
// existing synaptic currents (any impulse arriving at the boundary must be
// applied separately via AddSynCurrentImpulse).
func (b *Base) StepResidual(dt float64, coeffsFor func(tauSyn float64) propagator.Coeffs) {
	decayV := expNeg(dt / b.params.TauM)
	newV := decayV*(b.state.V-b.params.ELeak) + b.params.ELeak
	for r, tauSyn := range b.params.ReceptorTauSyn {
		c := coeffsFor(tauSyn)
		newV += c.P32 * b.state.SynCurrent[r]
	}
	b.state.V = newV
}

func expNeg(x float64) float64 {
	if x > 700 {
		return 0
	}
	return math.Exp(-x)
}
