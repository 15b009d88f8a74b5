// Package propagator provides closed-form propagation coefficients for the
// canonical linear building block used by most point-neuron models:
//
//	dV/dt = -V/tau_m + I(t)/C,  dI/dt = -I/tau_syn + sum delta(t - t_k)
//
// Like the decay-coefficient helpers elsewhere in this module (which
// precompute exp(-h/tau)-shaped factors once per calibration rather than
// re-deriving them every step), this package precomputes its coefficients
// once; it is the exact-solution analogue of that idiom for the coupled
// V/I system.
package propagator

import "math"

// Coeffs carries the two propagation factors P31 (current into voltage)
// and P32 (current decay's contribution to voltage) advancing the linear
// system above by one step h. Callers must treat these as opaque.
type Coeffs struct {
	P31 float64
	P32 float64
}

// instabilityThreshold is the |tau - tau_syn| (ms) below which the
// closed-form coefficients become numerically unstable.
const instabilityThreshold = 0.1

// Compute returns the propagator coefficients for step h given membrane
// time constant tau, synaptic time constant tauSyn, and capacitance c.
//
// Internally it uses exp for the synaptic decay, expm1 for the difference
// of the two exponentials, and the intermediate
// beta = tauSyn*tau/(tau-tauSyn). When |tau - tauSyn| < 0.1 ms the generic
// closed form is unstable; both the generic formula and its near-degenerate
// limit (a singular expansion in h) are computed, and the singular form is
// returned when the deviation from the closed form exceeds twice the
// leading correction term.
func Compute(tauSyn, tau, c, h float64) Coeffs {
	if math.Abs(tau-tauSyn) >= instabilityThreshold {
		return genericCoeffs(tauSyn, tau, c, h)
	}
	generic := genericCoeffs(tauSyn, tau, c, h)
	singular, leading := singularCoeffs(tau, c, h)
	if math.Abs(generic.P32-singular.P32) > 2*math.Abs(leading) {
		return singular
	}
	return generic
}

func genericCoeffs(tauSyn, tau, c, h float64) Coeffs {
	beta := tauSyn * tau / (tau - tauSyn)
	gamma := beta / c
	expSyn := math.Exp(-h / tauSyn)
	// expSyn*expm1Diff == exp(-h/tau) - exp(-h/tauSyn), with expm1Diff
	// computed as an expm1 of the difference of exponents so small-h
	// cancellation never touches the 1 that exp() would otherwise carry.
	expm1Diff := math.Expm1(h/tauSyn - h/tau)
	p32 := gamma * expSyn * expm1Diff
	p31 := gamma * (beta*expSyn*expm1Diff - h*expSyn)
	return Coeffs{P31: p31, P32: p32}
}

// singularCoeffs computes the tau -> tauSyn limit of the generic formula as
// a power series in h, returning the coefficients together with the
// leading (first-order) correction term used by Compute's stability rule.
func singularCoeffs(tau, c, h float64) (Coeffs, float64) {
	expTau := math.Exp(-h / tau)
	// In the degenerate limit tau == tauSyn, P32 -> (h/C) * exp(-h/tau).
	p32 := (h / c) * expTau
	// P31 -> (h^2 / (2*C)) * exp(-h/tau) in the same limit.
	p31 := (h * h / (2 * c)) * expTau
	leading := (h * h) / (2 * c * tau) * expTau
	return Coeffs{P31: p31, P32: p32}, leading
}

// AdHocResidual computes the partial propagation coefficients for a
// residual interval dt < h, used when a refractory timer expires mid-step.
func AdHocResidual(tauSyn, tau, c, dt float64) Coeffs {
	return Compute(tauSyn, tau, c, dt)
}
