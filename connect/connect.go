// Package connect implements the spatial connection builder: pairwise-
// Bernoulli, fixed-indegree, and fixed-outdegree rules over a source and
// target layer, each evaluating weight/delay/receptor parameters from the
// param package at the winning pair's displacement.
package connect

import (
	"sync"

	"github.com/SynapticNetworks/gridspike/kernelerr"
	"github.com/SynapticNetworks/gridspike/param"
	"github.com/SynapticNetworks/gridspike/spatial"
)

// Rule identifies which of the three connection rules a Spec describes.
type Rule int

const (
	PairwiseBernoulliTarget Rule = iota
	PairwiseBernoulliSource
	FixedIndegree
	FixedOutdegree
)

// Spec describes one connection-building call.
type Spec struct {
	Rule Rule
	Mask spatial.Mask

	Probability param.Parameter // Bernoulli acceptance probability, or a fixed-indegree sampling kernel
	N           int             // fixed-indegree / fixed-outdegree target count

	AllowAutapses  bool
	AllowMultapses bool

	Weight   param.Parameter
	Delay    param.Parameter
	Receptor param.Parameter // nil means receptor 0

	SynapseModel int
}

// Pair is one instantiated connection.
type Pair struct {
	Source, Target int
	Weight, Delay   float64
	Receptor        int
}

// GlobalRNGThread is the erand thread index reserved for the rank-
// synchronized global RNG stream fixed-outdegree draws from. It must not collide with any real worker
// thread index, so it is chosen as an out-of-band negative index.
const GlobalRNGThread = -1

// Builder owns the two layers a connection rule runs between and the
// thread/ownership model the caller's ranks use.
type Builder struct {
	SourceLayer, TargetLayer *spatial.Layer
	Extent                   spatial.Extent
	Periodic                 spatial.Periodic
	NumThreads               int

	// TargetsHaveProxies reports whether spatial connection rules are
	// legal for the target collection at all.
	TargetsHaveProxies bool

	// OwnerThread returns the local thread owning targetIdx, and false if
	// this rank does not own it at all.
	OwnerThread func(targetIdx int) (thread int, owned bool)
}

func (b *Builder) periodicAny() bool {
	return b.Periodic.X || b.Periodic.Y || b.Periodic.Z
}

// Build runs spec's rule and returns every connection this rank
// instantiated.
func (b *Builder) Build(spec Spec) ([]Pair, error) {
	if !b.TargetsHaveProxies {
		return nil, kernelerr.NewIllegalConnection("layer", "device-target", "spatial connection rules require proxies on other ranks")
	}
	switch spec.Rule {
	case PairwiseBernoulliTarget:
		return b.buildPairwiseBernoulli(spec, false)
	case PairwiseBernoulliSource:
		return b.buildPairwiseBernoulli(spec, true)
	case FixedIndegree:
		return b.buildFixedIndegree(spec)
	case FixedOutdegree:
		return b.buildFixedOutdegree(spec)
	default:
		return nil, kernelerr.NewBadProperty("connect", "Rule", "unknown connection rule")
	}
}

// runPerThread partitions TargetLayer's indices across NumThreads workers
//, recovering and re-wrapping any worker panic so it surfaces on
// the caller's goroutine only after every worker has joined.
func (b *Builder) runPerThread(work func(tid int, targetIdx int, local *[]Pair) error) ([]Pair, error) {
	results := make([][]Pair, b.NumThreads)
	errs := make([]error, b.NumThreads)
	var wg sync.WaitGroup

	for tid := 0; tid < b.NumThreads; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[tid] = kernelerr.NewWorkerPanic(tid, r)
				}
			}()
			var local []Pair
			for ti := 0; ti < b.TargetLayer.Size(); ti++ {
				owner, owned := tid, true
				if b.OwnerThread != nil {
					owner, owned = b.OwnerThread(ti)
				}
				if !owned || owner != tid {
					continue
				}
				if err := work(tid, ti, &local); err != nil {
					errs[tid] = err
					return
				}
			}
			results[tid] = local
		}(tid)
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	var all []Pair
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func (b *Builder) spatialContext(thread int, sourceIdx int, tpos spatial.Position) param.Context {
	return param.Context{
		Thread:      thread,
		SourcePos:   b.SourceLayer.Position(sourceIdx),
		TargetPos:   tpos,
		SourceLayer: b.SourceLayer,
		HasSpatial:  true,
		Extent:      b.Extent,
		Periodic:    b.Periodic,
	}
}

// evalWeightDelayReceptor evaluates weight then delay then receptor, in
// that order, since the RNG may be consumed by either.
func (b *Builder) evalWeightDelayReceptor(spec Spec, ctx param.Context) (weight, delay float64, receptor int, err error) {
	weight, err = spec.Weight.Value(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	delay, err = spec.Delay.Value(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	if spec.Receptor != nil {
		rv, err := spec.Receptor.Value(ctx)
		if err != nil {
			return 0, 0, 0, err
		}
		receptor = int(rv)
	}
	return weight, delay, receptor, nil
}
