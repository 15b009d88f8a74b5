package neuron

import "testing"

func TestNewIAFValidatesParams(t *testing.T) {
	p := DefaultParams()
	p.C = -1
	if _, err := NewIAF(0, p, RefractoryWholeStep, 0); err == nil {
		t.Fatalf("expected error constructing IAF with invalid params")
	}
}

func newCalibratedIAF(t *testing.T, mode RefractoryMode) *IAF {
	t.Helper()
	p := DefaultParams()
	n, err := NewIAF(0, p, mode, 0)
	if err != nil {
		t.Fatalf("NewIAF: %v", err)
	}
	if err := n.Calibrate(0.1); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}
	return n
}

func TestIAFStaysAtRestWithoutInput(t *testing.T) {
	n := newCalibratedIAF(t, RefractoryWholeStep)
	spikes, err := n.Update(0, 5)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(spikes) != 0 {
		t.Fatalf("expected no spikes at rest, got %d", len(spikes))
	}
	if n.V() != n.params.ELeak {
		t.Fatalf("V() = %g, want unchanged ELeak %g", n.V(), n.params.ELeak)
	}
}

func TestIAFFiresWhenDrivenAboveThreshold(t *testing.T) {
	n := newCalibratedIAF(t, RefractoryWholeStep)
	// Force V far above threshold; with pLeak close to 1 over a single small
	// step, the propagated value remains far above threshold too.
	n.state.V = 1000

	spikes, err := n.Update(0, 1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(spikes) != 1 {
		t.Fatalf("got %d spikes, want 1", len(spikes))
	}
	if spikes[0].Source != n.id || spikes[0].Stamp != 0 {
		t.Fatalf("spike = %+v, want Source=%d Stamp=0", spikes[0], n.id)
	}
	if n.V() != n.params.Vreset {
		t.Fatalf("V() after firing = %g, want Vreset %g", n.V(), n.params.Vreset)
	}
	if n.state.RefractoryRemaining != n.params.RefractoryMS {
		t.Fatalf("RefractoryRemaining = %g, want %g", n.state.RefractoryRemaining, n.params.RefractoryMS)
	}
	if n.state.LastSpikeStep != 0 {
		t.Fatalf("LastSpikeStep = %d, want 0", n.state.LastSpikeStep)
	}
}

func TestIAFHoldsVDuringWholeStepRefractory(t *testing.T) {
	n := newCalibratedIAF(t, RefractoryWholeStep)
	n.state.V = 1000
	if _, err := n.Update(0, 1); err != nil {
		t.Fatalf("Update (fire): %v", err)
	}
	if n.state.RefractoryRemaining <= n.h {
		t.Fatalf("test setup expects multiple steps of refractoriness, got RefractoryRemaining=%g h=%g", n.state.RefractoryRemaining, n.h)
	}

	remainingBefore := n.state.RefractoryRemaining
	spikes, err := n.Update(1, 2)
	if err != nil {
		t.Fatalf("Update (hold): %v", err)
	}
	if len(spikes) != 0 {
		t.Fatalf("expected no spike while refractory, got %d", len(spikes))
	}
	if n.V() != n.params.Vreset {
		t.Fatalf("V() during refractory hold = %g, want held at Vreset %g", n.V(), n.params.Vreset)
	}
	if n.state.RefractoryRemaining != remainingBefore-n.h {
		t.Fatalf("RefractoryRemaining = %g, want decremented by h to %g", n.state.RefractoryRemaining, remainingBefore-n.h)
	}
}

func TestIAFZeroWindowReturnsNoSpikes(t *testing.T) {
	n := newCalibratedIAF(t, RefractoryWholeStep)
	spikes, err := n.Update(5, 5)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if spikes != nil {
		t.Fatalf("expected nil spikes for zero-length window, got %v", spikes)
	}
}
