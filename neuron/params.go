package neuron

import "github.com/SynapticNetworks/gridspike/kernelerr"

// SFAChannelParams describes one exponentially-decaying spike-frequency
// adaptation channel.
type SFAChannelParams struct {
	Tau       float64 // ms
	Increment float64 // added to the channel's current on every emitted spike
}

// Params holds every calibration-time constant of a point-neuron model.
// Receptor-indexed fields have one entry per receptor port; Receptors is
// the authoritative port count.
type Params struct {
	TauM      float64 // membrane time constant, ms
	C         float64 // membrane capacitance
	ELeak     float64 // resting/leak potential
	Threshold float64
	Vreset    float64

	Receptors       int
	ReceptorTauSyn  []float64 // per-receptor synaptic time constant, ms

	RefractoryMS float64 // absolute refractory duration, ms

	SFA []SFAChannelParams

	Stochastic   bool
	HazardSlope  float64 // "c1": growth of the log hazard rate per mV above threshold
	HazardOffset float64 // "c2": log of the hazard rate at threshold

	InterpOrder ThresholdInterpOrder // used only by the precise (variant d) model
}

// DefaultParams returns a minimal single-receptor, deterministic-threshold
// parameter set with no adaptation, suitable as a starting point for tests
// and for Redraw-free construction.
func DefaultParams() Params {
	return Params{
		TauM:           10,
		C:              250,
		ELeak:          -70,
		Threshold:      -55,
		Vreset:         -70,
		Receptors:      1,
		ReceptorTauSyn: []float64{2},
		RefractoryMS:   2,
	}
}

// Validate checks the invariants SetStatus must enforce before committing
// any change. component is the name reported in errors.
func (p Params) Validate(component string) error {
	if p.TauM <= 0 {
		return kernelerr.NewBadProperty(component, "TauM", "must be positive")
	}
	if p.C <= 0 {
		return kernelerr.NewBadProperty(component, "C", "must be positive")
	}
	if p.Receptors <= 0 {
		return kernelerr.NewBadProperty(component, "Receptors", "must be at least 1")
	}
	if len(p.ReceptorTauSyn) != p.Receptors {
		return kernelerr.NewBadProperty(component, "ReceptorTauSyn", "length must equal Receptors")
	}
	for i, tau := range p.ReceptorTauSyn {
		if tau <= 0 {
			return kernelerr.NewBadProperty(component, "ReceptorTauSyn", "every receptor time constant must be positive")
		}
		_ = i
	}
	if p.RefractoryMS < 0 {
		return kernelerr.NewBadProperty(component, "RefractoryMS", "must not be negative")
	}
	for _, ch := range p.SFA {
		if ch.Tau <= 0 {
			return kernelerr.NewBadProperty(component, "SFA", "adaptation channel time constant must be positive")
		}
	}
	if p.Stochastic && p.HazardSlope <= 0 {
		return kernelerr.NewBadProperty(component, "HazardSlope", "must be positive when Stochastic is enabled")
	}
	return nil
}

// WithGrownReceptors returns a copy of p with its receptor count raised to
// at least n, carrying the last-configured tau_syn forward to new ports.
// It never shrinks n back down.
func (p Params) WithGrownReceptors(n int, defaultTauSyn float64) Params {
	if n <= p.Receptors {
		return p
	}
	grown := make([]float64, n)
	copy(grown, p.ReceptorTauSyn)
	last := defaultTauSyn
	if len(p.ReceptorTauSyn) > 0 {
		last = p.ReceptorTauSyn[len(p.ReceptorTauSyn)-1]
	}
	for i := len(p.ReceptorTauSyn); i < n; i++ {
		grown[i] = last
	}
	p.Receptors = n
	p.ReceptorTauSyn = grown
	return p
}

// ShiftELeak applies the "change E_L, carry V along with it" rule: raising
// or lowering the resting potential moves the current membrane state, the
// threshold and the reset potential by the same delta, so a pure E_L edit
// never changes how far V sits from threshold.
func (p *Params) ShiftELeak(newELeak float64, state *State) {
	delta := newELeak - p.ELeak
	p.ELeak = newELeak
	p.Threshold += delta
	p.Vreset += delta
	state.V += delta
}
