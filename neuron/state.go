package neuron

// State holds a point-neuron model's per-instance dynamical variables: the
// membrane potential, one synaptic current per receptor, the adaptation
// channels' currents, and the refractory countdown. Opaque to every
// package outside neuron/models except through Status/SetStatus.
type State struct {
	V float64

	SynCurrent []float64 // one per receptor port

	SFACurrent []float64 // one per adaptation channel, decays toward zero

	// RefractoryRemaining is the time (ms) still left in the absolute
	// refractory period; zero means the neuron integrates normally.
	RefractoryRemaining float64

	LastSpikeStep int64
}

// NewState returns a zeroed state sized for p's receptor and adaptation
// channel counts, with V initialized to the resting potential.
func NewState(p Params) State {
	return State{
		V:          p.ELeak,
		SynCurrent: make([]float64, p.Receptors),
		SFACurrent: make([]float64, len(p.SFA)),
	}
}

// growReceptors extends SynCurrent with zeroed slots as the receptor count
// grows, preserving existing synaptic currents.
func (s *State) growReceptors(n int) {
	if n <= len(s.SynCurrent) {
		return
	}
	grown := make([]float64, n)
	copy(grown, s.SynCurrent)
	s.SynCurrent = grown
}
