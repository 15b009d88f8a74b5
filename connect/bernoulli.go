package connect

import (
	"github.com/emer/emergent/v2/erand"

	"github.com/SynapticNetworks/gridspike/spatial"
)

// buildPairwiseBernoulli implements both the target-driven and source-
// driven variants. The source-driven variant is computed
// by reflecting the mask (spatial.Converse) rather than re-deriving a
// separate source-outer-loop traversal: since the mask/Inside test is the
// only thing that differs between the two, and the point set a reflected
// mask selects from the target's perspective is exactly the set the
// original mask would select from the source's perspective, both variants
// can share one per-target parallel loop. This is a deliberate
// simplification recorded in DESIGN.md.
func (b *Builder) buildPairwiseBernoulli(spec Spec, sourceDriven bool) ([]Pair, error) {
	ntree := b.SourceLayer.NtreeIndex()
	mask := spec.Mask
	if sourceDriven {
		mask = spatial.Converse{Inner: mask}
	}

	return b.runPerThread(func(tid int, ti int, local *[]Pair) error {
		tpos := b.TargetLayer.Position(ti)
		anchored := spatial.AnchorAt(mask, tpos)

		visit := func(sourceIdx int) error {
			if !spec.AllowAutapses && sourceIdx == ti && b.SourceLayer == b.TargetLayer {
				return nil
			}
			ctx := b.spatialContext(tid, sourceIdx, tpos)
			p, err := spec.Probability.Value(ctx)
			if err != nil {
				return err
			}
			if erand.ZeroOne(tid) >= p {
				return nil
			}
			weight, delay, receptor, err := b.evalWeightDelayReceptor(spec, ctx)
			if err != nil {
				return err
			}
			*local = append(*local, Pair{Source: sourceIdx, Target: ti, Weight: weight, Delay: delay, Receptor: receptor})
			return nil
		}

		if b.periodicAny() {
			var visitErr error
			spatial.PeriodicMaskedIterate(ntree, anchored, b.Extent, b.Periodic, func(it spatial.Item) {
				if visitErr != nil {
					return
				}
				visitErr = visit(it.Payload)
			})
			return visitErr
		}

		it := spatial.NewMaskedIterator(ntree, anchored)
		for it.Next() {
			if err := visit(it.Item().Payload); err != nil {
				return err
			}
		}
		return nil
	})
}
