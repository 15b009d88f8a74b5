// Package kernel wires the leaf components (C1-C11) into the per-min-delay-
// window simulation loop: neuron update, spike collection, exchange, and
// dispatch into next window's ring buffers, plus the connection-build
// entry point.
//
// Grounded on NEST's CommonInterface.h/.cpp, which every manager
// (connection manager, event-delivery manager, node manager) implements:
// a calibrate-before-use / cleanup-releases-memory lifecycle. This kernel
// keeps that as the Manager interface below: Population implements it
// directly, and sourcetable.Table and delivery.Exchange take part through
// the TableManager and ExchangeManager adapters; further subsystems can be
// registered with Population.AddManager.
package kernel

import (
	"github.com/SynapticNetworks/gridspike/delivery"
	"github.com/SynapticNetworks/gridspike/event"
	"github.com/SynapticNetworks/gridspike/kernelerr"
	"github.com/SynapticNetworks/gridspike/klog"
	"github.com/SynapticNetworks/gridspike/neuron"
	"github.com/SynapticNetworks/gridspike/sourcetable"
)

// Manager is the common lifecycle every kernel-owned subsystem presents:
// calibrate before first use (or after h changes), and cleanup to release
// per-run memory. Mirrors NEST's CommonInterface contract.
type Manager interface {
	Calibrate(h float64) error
	Cleanup()
}

// TableManager adapts a sourcetable.Table to Manager: calibrate is a
// no-op (the table has no h-dependent state), cleanup releases every
// thread's rows via ClearAll, matching "source tables live per thread and
// are explicitly cleared once their content has been pivoted".
type TableManager struct {
	Table *sourcetable.Table
}

func (m TableManager) Calibrate(float64) error { return nil }
func (m TableManager) Cleanup()                { m.Table.ClearAll() }

// ExchangeManager adapts a delivery.Exchange to Manager: calibrate resets
// the collect-phase accumulator for a fresh h, cleanup zeroes it.
type ExchangeManager struct {
	Exchange *delivery.Exchange
}

func (m ExchangeManager) Calibrate(float64) error { m.Exchange.Reset(); return nil }
func (m ExchangeManager) Cleanup()                { m.Exchange.Reset() }

// Population owns every local neuron's Node plus the shared infrastructure
// one min-delay window's update/collect/exchange/dispatch cycle needs.
type Population struct {
	H        float64
	MinDelay int64

	Nodes     []neuron.Node
	Table     *sourcetable.Table
	Exchange  *delivery.Exchange
	Log       *klog.Logger
	Receptors int

	// LocalIndex maps a node ID to its local slot, used to route dispatch
	// back to the owning Node.
	LocalIndex map[int]int

	// TargetsOf returns every (localTargetIdx, receptor, weight, delay)
	// a source node's spike fans out to; supplied by the connection
	// layer once connections have been pivoted from the source table.
	TargetsOf func(sourceNodeID int) []FanOut

	managers []Manager
}

// FanOut is one outgoing edge from a spiking source, already resolved to
// the owning rank's local target index.
type FanOut struct {
	LocalTargetIdx int
	Receptor       int
	Weight         float64
	Delay          int64
}

// NewPopulation builds a Population and registers the standard managers
// (table, exchange) for lifecycle calibration.
func NewPopulation(h float64, minDelay int64, nodes []neuron.Node, table *sourcetable.Table, exch *delivery.Exchange, log *klog.Logger) *Population {
	p := &Population{
		H: h, MinDelay: minDelay, Nodes: nodes, Table: table, Exchange: exch, Log: log,
		LocalIndex: make(map[int]int, len(nodes)),
	}
	for i, n := range nodes {
		p.LocalIndex[n.ID()] = i
	}
	p.managers = []Manager{TableManager{Table: table}}
	if exch != nil {
		p.managers = append(p.managers, ExchangeManager{Exchange: exch})
	}
	return p
}

// AddManager registers an additional lifecycle-managed subsystem (e.g. a
// spatial.Layer's cached ntree wrapped to satisfy Manager).
func (p *Population) AddManager(m Manager) { p.managers = append(p.managers, m) }

// Calibrate calls Calibrate(h) on every node and every registered manager.
// Must be (re)called whenever h changes.
func (p *Population) Calibrate(h float64) error {
	p.H = h
	for _, n := range p.Nodes {
		if err := n.Calibrate(h); err != nil {
			return err
		}
	}
	for _, m := range p.managers {
		if err := m.Calibrate(h); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup releases per-run memory held by every registered manager.
func (p *Population) Cleanup() {
	for _, m := range p.managers {
		m.Cleanup()
	}
}

// RunWindow advances every local node from step origin to origin+MinDelay,
// collects emitted spikes, exchanges them (MPI all-reduce, a no-op copy on
// a single rank), and dispatches the result into next window's ring
// buffers via each target node's HandleSpike. Returns every spike emitted
// during the window, for callers that also need raw spike records (e.g.
// for a recording back-end outside this package's scope).
func (p *Population) RunWindow(origin int64) ([]event.SpikeEvent, error) {
	if p.TargetsOf == nil {
		return nil, kernelerr.NewKernelException("kernel", "Population.TargetsOf must be set before RunWindow")
	}

	var emitted []event.SpikeEvent
	for _, n := range p.Nodes {
		spikes, err := n.Update(origin, origin+p.MinDelay)
		if err != nil {
			return nil, err
		}
		emitted = append(emitted, spikes...)
	}

	if p.Exchange != nil {
		p.Exchange.Reset()
		for _, s := range emitted {
			for _, fo := range p.TargetsOf(s.Source) {
				p.Exchange.Collect(fo.LocalTargetIdx, fo.Receptor, fo.Weight*float64(spikeMultiplicity(s)))
			}
		}
		p.Exchange.Run()
		p.Exchange.Dispatch(func(localIdx, receptor int, total float64) {
			target := p.Nodes[localIdx]
			target.HandleSpike(event.SpikeEvent{
				Target:       target.ID(),
				Weight:       total,
				Multiplicity: 1,
				Receptor:     receptor,
				Stamp:        origin,
			}, 0)
		})
	} else {
		// Single-process fast path: dispatch directly without going
		// through the dense exchange accumulator.
		for _, s := range emitted {
			for _, fo := range p.TargetsOf(s.Source) {
				target := p.Nodes[fo.LocalTargetIdx]
				lag := int(fo.Delay)
				target.HandleSpike(event.SpikeEvent{
					Source: s.Source, Target: target.ID(), Stamp: s.Stamp,
					Weight: fo.Weight, Multiplicity: spikeMultiplicity(s), Receptor: fo.Receptor, Delay: fo.Delay,
				}, lag)
			}
		}
	}

	return emitted, nil
}

// spikeMultiplicity returns s.Multiplicity, defaulting to a single spike
// when the emitting model leaves the field at its zero value (Multiplicity
// only matters for models that coalesce simultaneous spikes into one
// event).
func spikeMultiplicity(s event.SpikeEvent) int {
	if s.Multiplicity <= 0 {
		return 1
	}
	return s.Multiplicity
}
