package neuron

// decaySFA advances every adaptation channel's current by one step and
// returns their sum, the total adaptation that the caller subtracts from
// the membrane potential this step.
func decaySFA(state *State, decay []float64) float64 {
	var total float64
	for i := range state.SFACurrent {
		state.SFACurrent[i] *= decay[i]
		total += state.SFACurrent[i]
	}
	return total
}

// onSpikeSFA applies each channel's per-spike increment, called whenever
// the neuron emits a spike.
func onSpikeSFA(state *State, channels []SFAChannelParams) {
	for i, ch := range channels {
		state.SFACurrent[i] += ch.Increment
	}
}
