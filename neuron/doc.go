// Package neuron implements the fixed-grid neuron update engine: the
// calibrate/update contract every point-neuron model obeys, four
// integration variants (exact linear, linear with refractory mid-step
// return, adaptive-solver nonlinear, and precise off-grid timing), and
// two optional trait add-ons (spike-frequency adaptation, stochastic
// threshold crossing).
//
// A concrete model is a record plus function table rather than a class
// hierarchy: Params and State carry the numbers, and the small set of
// Variant implementations in this package and in neuron/models wire them
// to propagator, ringbuffer, and slicebuffer, favoring small composable
// interfaces over a deep inheritance tree.
package neuron
