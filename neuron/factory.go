package neuron

import "github.com/SynapticNetworks/gridspike/kernelerr"

// Constructor builds a Node from an id, its parameters, and the owning
// thread (used to pick the correct per-thread RNG stream for stochastic
// models). Models register themselves under a name so the kernel can
// build a population from a string model name plus a Params value, the
// way NEST's model registry does.
type Constructor func(id int, p Params, thread int) (Node, error)

var registry = map[string]Constructor{
	"iaf_exact": func(id int, p Params, thread int) (Node, error) {
		return NewIAF(id, p, RefractoryWholeStep, thread)
	},
	"iaf_presc": func(id int, p Params, thread int) (Node, error) {
		return NewIAF(id, p, RefractoryMidStepReturn, thread)
	},
}

// Register adds (or replaces) a named model constructor; called by
// neuron/models' init functions so the variant-d precise model and the
// supplemented gif and glif models are reachable by name without this
// package importing them directly. The variant-c adaptive model is not
// registered; it is built with models.NewAdaptive.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// New builds a registered model by name.
func New(name string, id int, p Params, thread int) (Node, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, kernelerr.NewBadProperty("factory", "model", "unknown model name "+name)
	}
	return ctor(id, p, thread)
}
