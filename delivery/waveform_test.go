package delivery

import "testing"

func TestWaveformRelaxConvergesWhenSampleIsFixedPoint(t *testing.T) {
	w := NewWaveformRelax(nil, 2, 1e-6, 50, nil)
	target := []float32{1.0, 2.0}

	iterations, converged := w.Run(func(global []float32, out []float32) {
		copy(out, target)
	})
	if !converged {
		t.Fatalf("expected convergence when sample immediately returns a fixed point")
	}
	if iterations != 2 {
		t.Fatalf("iterations = %d, want 2 (first sample differs from the zero start, second repeats it)", iterations)
	}
	result := w.Result()
	if result[0] != target[0] || result[1] != target[1] {
		t.Fatalf("Result() = %v, want %v", result, target)
	}
}

func TestWaveformRelaxStopsAtMaxIterationsWhenOscillating(t *testing.T) {
	w := NewWaveformRelax(nil, 1, 1e-6, 5, nil)
	toggle := false
	iterations, converged := w.Run(func(global []float32, out []float32) {
		if toggle {
			out[0] = 1.0
		} else {
			out[0] = -1.0
		}
		toggle = !toggle
	})
	if converged {
		t.Fatalf("expected non-convergence for an oscillating sample")
	}
	if iterations != 5 {
		t.Fatalf("iterations = %d, want maxIterations=5", iterations)
	}
}

func TestWaveformRelaxConvergesWithinToleranceOfApproachingSeries(t *testing.T) {
	w := NewWaveformRelax(nil, 1, 0.05, 100, nil)
	val := float32(0.0)
	iterations, converged := w.Run(func(global []float32, out []float32) {
		val += (10 - val) * 0.5
		out[0] = val
	})
	if !converged {
		t.Fatalf("expected the geometrically-converging series to settle within tolerance, iterations=%d", iterations)
	}
}
