package connect

import (
	"github.com/emer/emergent/v2/erand"

	"github.com/SynapticNetworks/gridspike/kernelerr"
	"github.com/SynapticNetworks/gridspike/spatial"
)

// buildFixedOutdegree draws exactly spec.N targets for every global
// source, in a single-threaded section using the rank-synchronized global
// RNG so every rank consumes the identical draw sequence; only the
// decision to actually instantiate a drawn pair is rank-local.
func (b *Builder) buildFixedOutdegree(spec Spec) ([]Pair, error) {
	ntree := b.TargetLayer.NtreeIndex()
	var out []Pair

	for si := 0; si < b.SourceLayer.Size(); si++ {
		spos := b.SourceLayer.Position(si)
		anchored := spatial.AnchorAt(spec.Mask, spos)

		var pool []int
		if b.periodicAny() {
			spatial.PeriodicMaskedIterate(ntree, anchored, b.Extent, b.Periodic, func(it spatial.Item) {
				pool = append(pool, it.Payload)
			})
		} else {
			it := spatial.NewMaskedIterator(ntree, anchored)
			for it.Next() {
				pool = append(pool, it.Item().Payload)
			}
		}
		if !spec.AllowAutapses && b.SourceLayer == b.TargetLayer {
			filtered := pool[:0]
			for _, t := range pool {
				if t != si {
					filtered = append(filtered, t)
				}
			}
			pool = filtered
		}
		if len(pool) == 0 {
			return nil, kernelerr.NewKernelException("fixed_outdegree", "empty target pool for source")
		}
		if !spec.AllowMultapses && len(pool) < spec.N {
			return nil, kernelerr.NewKernelException("fixed_outdegree", "target pool smaller than requested outdegree and multapses disallowed")
		}

		chosen := make(map[int]bool, spec.N)
		for n := 0; n < spec.N; n++ {
			targetIdx, err := drawNonColliding(pool, spec.AllowMultapses, chosen)
			if err != nil {
				return nil, err
			}
			if !spec.AllowMultapses {
				chosen[targetIdx] = true
			}

			thread, owned := 0, true
			if b.OwnerThread != nil {
				thread, owned = b.OwnerThread(targetIdx)
			}
			if !owned {
				continue
			}

			tpos := b.TargetLayer.Position(targetIdx)
			ctx := b.spatialContext(thread, si, tpos)
			weight, delay, receptor, err := b.evalWeightDelayReceptor(spec, ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, Pair{Source: si, Target: targetIdx, Weight: weight, Delay: delay, Receptor: receptor})
		}
	}
	return out, nil
}

// drawNonColliding draws a global-RNG index from pool, redrawing on
// collision with an already-chosen target when multapses are disallowed.
// The draw itself always happens, collision or not, so every rank
// consumes the same number of random numbers regardless of local outcome.
func drawNonColliding(pool []int, allowMultapses bool, chosen map[int]bool) (int, error) {
	for attempt := 0; attempt < maxRedrawAttemptsPerTarget; attempt++ {
		idx := int(erand.UniformMinMax(0, float64(len(pool)), GlobalRNGThread))
		if idx >= len(pool) {
			idx = len(pool) - 1
		}
		cand := pool[idx]
		if !allowMultapses && chosen[cand] {
			continue
		}
		return cand, nil
	}
	return 0, kernelerr.NewKernelException("fixed_outdegree", "could not find a non-colliding target within the redraw budget")
}
