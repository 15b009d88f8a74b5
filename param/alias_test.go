package param

import "testing"

func TestNewAliasSamplerEmptyWeights(t *testing.T) {
	s := NewAliasSampler(nil)
	if got := s.Draw(0); got != -1 {
		t.Fatalf("Draw on empty sampler = %d, want -1", got)
	}
}

func TestNewAliasSamplerDegenerateZeroWeightsFallsBackUniform(t *testing.T) {
	s := NewAliasSampler([]float64{0, 0, 0})
	for i := 0; i < 50; i++ {
		if got := s.Draw(0); got < 0 || got >= 3 {
			t.Fatalf("Draw = %d, want in [0,3)", got)
		}
	}
}

func TestAliasSamplerDrawStaysWithinRange(t *testing.T) {
	s := NewAliasSampler([]float64{1, 2, 3, 4})
	for i := 0; i < 200; i++ {
		got := s.Draw(0)
		if got < 0 || got >= 4 {
			t.Fatalf("Draw = %d, out of range [0,4)", got)
		}
	}
}

func TestAliasSamplerSingleOutcomeAlwaysReturnsIt(t *testing.T) {
	s := NewAliasSampler([]float64{5})
	for i := 0; i < 20; i++ {
		if got := s.Draw(0); got != 0 {
			t.Fatalf("Draw with single outcome = %d, want 0", got)
		}
	}
}

func TestAliasSamplerApproximatesWeightedFrequencies(t *testing.T) {
	// Outcome 2 has 10x the weight of outcomes 0, 1, 3; over many draws its
	// empirical frequency should dominate.
	s := NewAliasSampler([]float64{1, 1, 10, 1})
	const n = 5000
	counts := make([]int, 4)
	for i := 0; i < n; i++ {
		counts[s.Draw(0)]++
	}
	if counts[2] < n/3 {
		t.Fatalf("heavily-weighted outcome 2 only drawn %d/%d times, want a clear majority", counts[2], n)
	}
}
