package neuron

import "testing"

func TestDecaySFADecaysAndReturnsSum(t *testing.T) {
	state := &State{SFACurrent: []float64{1.0, 2.0}}
	decay := []float64{0.5, 0.5}

	sum := decaySFA(state, decay)

	if state.SFACurrent[0] != 0.5 || state.SFACurrent[1] != 1.0 {
		t.Fatalf("SFACurrent after decay = %v, want [0.5 1.0]", state.SFACurrent)
	}
	wantSum := state.SFACurrent[0] + state.SFACurrent[1]
	if sum != wantSum {
		t.Fatalf("decaySFA returned %g, want sum of decayed channels %g", sum, wantSum)
	}
}

func TestDecaySFAWithNoChannels(t *testing.T) {
	state := &State{}
	if sum := decaySFA(state, nil); sum != 0 {
		t.Fatalf("decaySFA with no channels = %g, want 0", sum)
	}
}

func TestOnSpikeSFAAppliesIncrements(t *testing.T) {
	state := &State{SFACurrent: []float64{0, 1}}
	channels := []SFAChannelParams{{Tau: 100, Increment: 0.3}, {Tau: 200, Increment: 0.2}}

	onSpikeSFA(state, channels)

	if state.SFACurrent[0] != 0.3 {
		t.Fatalf("SFACurrent[0] = %g, want 0.3", state.SFACurrent[0])
	}
	if state.SFACurrent[1] != 1.2 {
		t.Fatalf("SFACurrent[1] = %g, want 1.2", state.SFACurrent[1])
	}
}
