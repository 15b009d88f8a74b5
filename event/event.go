// Package event defines the discrete spike event and the family of
// continuous "secondary" events the kernel delivers between neurons.
package event

import "github.com/SynapticNetworks/gridspike/kernelerr"

// SpikeEvent is the discrete event carrying a single presynaptic spike to
// a connection's target.
type SpikeEvent struct {
	Source       int
	Target       int
	Stamp        int64   // step the spike was emitted at
	Offset       float64 // sub-step offset, zero for on-grid models
	Weight       float64
	Multiplicity int
	Receptor     int
	Delay        int64 // steps
}

// DeliveryStep returns the step at which this event should be applied to
// the target's ring buffer: stamp + delay.
func (e SpikeEvent) DeliveryStep() int64 { return e.Stamp + e.Delay }

// SecondaryKind identifies the closed family of continuous event types.
type SecondaryKind int

const (
	KindGapJunction SecondaryKind = iota
	KindInstantaneousRate
	KindDelayedRate
	KindDiffusion
	KindLearningSignal
	KindSlowInhibitoryCurrent
)

// CoeffLength returns the fixed number of float64 values this kind of
// secondary event carries per emission.
func (k SecondaryKind) CoeffLength() int {
	switch k {
	case KindGapJunction:
		return 1 // interpolated membrane voltage sample
	case KindInstantaneousRate:
		return 1
	case KindDelayedRate:
		return 1
	case KindDiffusion:
		return 2 // drift, diffusion
	case KindLearningSignal:
		return 1
	case KindSlowInhibitoryCurrent:
		return 1
	default:
		return 0
	}
}

func (k SecondaryKind) String() string {
	switch k {
	case KindGapJunction:
		return "gap_junction"
	case KindInstantaneousRate:
		return "instantaneous_rate"
	case KindDelayedRate:
		return "delayed_rate"
	case KindDiffusion:
		return "diffusion"
	case KindLearningSignal:
		return "learning_signal"
	case KindSlowInhibitoryCurrent:
		return "slow_inhibitory_current"
	default:
		return "unknown"
	}
}

// SecondaryEvent communicates coeff_length values of a fixed numeric type
// per source per min-delay window. The kernel serializes
// one as: synapse-type tag, source id, then coeff_length values — Encode
// produces exactly that layout.
type SecondaryEvent struct {
	Kind     SecondaryKind
	Source   int
	Target   int
	Delay    int64 // used by KindDelayedRate
	Coeffs   []float64
}

// NewSecondaryEvent validates coeffs against kind's declared coefficient
// length and
// builds the event.
func NewSecondaryEvent(kind SecondaryKind, source, target int, coeffs []float64) (SecondaryEvent, error) {
	want := kind.CoeffLength()
	if len(coeffs) != want {
		return SecondaryEvent{}, kernelerr.NewKernelException("secondary_event", "coefficient length mismatch for "+kind.String())
	}
	cp := make([]float64, len(coeffs))
	copy(cp, coeffs)
	return SecondaryEvent{Kind: kind, Source: source, Target: target, Coeffs: cp}, nil
}

// Encode serializes the event as [tag, source, coeffs...].
func (e SecondaryEvent) Encode() []float64 {
	out := make([]float64, 0, 2+len(e.Coeffs))
	out = append(out, float64(e.Kind), float64(e.Source))
	out = append(out, e.Coeffs...)
	return out
}

// Decode parses the wire layout produced by Encode.
func Decode(buf []float64) (SecondaryEvent, error) {
	if len(buf) < 2 {
		return SecondaryEvent{}, kernelerr.NewKernelException("secondary_event", "truncated encoding")
	}
	kind := SecondaryKind(int(buf[0]))
	source := int(buf[1])
	coeffs := buf[2:]
	if len(coeffs) != kind.CoeffLength() {
		return SecondaryEvent{}, kernelerr.NewKernelException("secondary_event", "coefficient length mismatch on decode for "+kind.String())
	}
	return NewSecondaryEvent(kind, source, 0, coeffs)
}

// DiffusionHandlerScale scales (drift, diffusion) coefficients by an edge
// weight on the receiving side.
func DiffusionHandlerScale(coeffs []float64, weight float64) (drift, diffusion float64) {
	return coeffs[0] * weight, coeffs[1] * weight
}
