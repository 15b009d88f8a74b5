package models

import "github.com/SynapticNetworks/gridspike/neuron"

// GIF is the generalized integrate-and-fire model: a linear variant-a
// integrator (neuron.IAF) with one or more spike-frequency adaptation
// channels enabled, corresponding to NEST's gif_psc_exp family.
type GIF struct {
	*neuron.IAF
}

// NewGIF constructs a GIF neuron from p as given. It does not add an SFA
// channel implicitly, so a p without SFA channels yields an
// adaptation-free GIF that behaves as a plain IAF.
func NewGIF(id int, p neuron.Params, thread int) (*GIF, error) {
	iaf, err := neuron.NewIAF(id, p, neuron.RefractoryWholeStep, thread)
	if err != nil {
		return nil, err
	}
	return &GIF{IAF: iaf}, nil
}

func init() {
	neuron.Register("gif_psc_exp", func(id int, p neuron.Params, thread int) (neuron.Node, error) {
		return NewGIF(id, p, thread)
	})
}
