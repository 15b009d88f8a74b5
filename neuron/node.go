package neuron

import "github.com/SynapticNetworks/gridspike/event"

// Node is the capability every point-neuron model, on-grid or off-grid,
// presents to the kernel. The model owns its ring
// buffers; Update consumes and rotates them internally as it marches from
// step from to step to, exactly as if the caller invoked it once per step.
type Node interface {
	ID() int

	// Calibrate (re)computes every cached coefficient derived from the
	// simulation step size h. It must be called again whenever h changes
	// or a parameter affecting time constants changes.
	Calibrate(h float64) error

	// Update advances the node from step from up to (not including) step
	// to, returning every spike emitted in that span.
	Update(from, to int64) ([]event.SpikeEvent, error)

	// HandleSpike delivers a presynaptic spike into the node's input
	// buffer at the given lag, counted in steps from the next step the
	// node's Update processes.
	HandleSpike(e event.SpikeEvent, lag int)

	// HandleSecondary applies a continuous event; nodes
	// that don't support a given kind return an error.
	HandleSecondary(e event.SecondaryEvent) error

	Status() map[string]interface{}
	SetStatus(m map[string]interface{}) error
}
