package models

import "github.com/SynapticNetworks/gridspike/neuron"

// GLIF is the generalized leaky integrate-and-fire model with a
// stochastic (escape-noise) threshold crossing layered on top of the
// GIF's adaptation channels, corresponding to NEST's glif_psc family.
type GLIF struct {
	*GIF
}

// NewGLIF constructs a GLIF neuron. When p.Stochastic is false it is
// switched on, and a zero p.HazardSlope is set to 1, before the usual
// parameter validation runs.
func NewGLIF(id int, p neuron.Params, thread int) (*GLIF, error) {
	if !p.Stochastic {
		p.Stochastic = true
		if p.HazardSlope == 0 {
			p.HazardSlope = 1
		}
	}
	gif, err := NewGIF(id, p, thread)
	if err != nil {
		return nil, err
	}
	return &GLIF{GIF: gif}, nil
}

func init() {
	neuron.Register("glif_psc", func(id int, p neuron.Params, thread int) (neuron.Node, error) {
		return NewGLIF(id, p, thread)
	})
}
