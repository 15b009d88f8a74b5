package connect

import (
	"github.com/emer/emergent/v2/erand"

	"github.com/SynapticNetworks/gridspike/kernelerr"
	"github.com/SynapticNetworks/gridspike/param"
	"github.com/SynapticNetworks/gridspike/spatial"
)

const maxRedrawAttemptsPerTarget = 10000

// buildFixedIndegree draws exactly spec.N sources per local target from
// its mask pool.
func (b *Builder) buildFixedIndegree(spec Spec) ([]Pair, error) {
	ntree := b.SourceLayer.NtreeIndex()

	return b.runPerThread(func(tid int, ti int, local *[]Pair) error {
		tpos := b.TargetLayer.Position(ti)
		anchored := spatial.AnchorAt(spec.Mask, tpos)

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
			for _, s := range pool {
				if s != ti {
					filtered = append(filtered, s)
				}
			}
			pool = filtered
		}

		if len(pool) == 0 {
			return kernelerr.NewKernelException("fixed_indegree", "empty source pool for target")
		}
		if !spec.AllowMultapses && len(pool) < spec.N {
			return kernelerr.NewKernelException("fixed_indegree", "source pool smaller than requested indegree and multapses disallowed")
		}

		var sampler *param.AliasSampler
		if spec.Probability != nil {
			weights := make([]float64, len(pool))
			for i, s := range pool {
				ctx := b.spatialContext(tid, s, tpos)
				w, err := spec.Probability.Value(ctx)
				if err != nil {
					return err
				}
				weights[i] = w
			}
			sampler = param.NewAliasSampler(weights)
		}

		chosen := make(map[int]bool, spec.N)
		for n := 0; n < spec.N; n++ {
			var sourceIdx int
			ok := false
			for attempt := 0; attempt < maxRedrawAttemptsPerTarget; attempt++ {
				var poolIdx int
				if sampler != nil {
					poolIdx = sampler.Draw(tid)
				} else {
					poolIdx = int(erand.UniformMinMax(0, float64(len(pool)), tid))
					if poolIdx >= len(pool) {
						poolIdx = len(pool) - 1
					}
				}
				cand := pool[poolIdx]
				if !spec.AllowMultapses && chosen[cand] {
					continue
				}
				sourceIdx = cand
				ok = true
				break
			}
			if !ok {
				return kernelerr.NewKernelException("fixed_indegree", "could not find a non-colliding source within the redraw budget for target")
			}
			if !spec.AllowMultapses {
				chosen[sourceIdx] = true
			}

			ctx := b.spatialContext(tid, sourceIdx, tpos)
			weight, delay, receptor, err := b.evalWeightDelayReceptor(spec, ctx)
			if err != nil {
				return err
			}
			*local = append(*local, Pair{Source: sourceIdx, Target: ti, Weight: weight, Delay: delay, Receptor: receptor})
		}
		return nil
	})
}
