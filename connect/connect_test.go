package connect

import (
	"testing"

	"github.com/SynapticNetworks/gridspike/param"
	"github.com/SynapticNetworks/gridspike/spatial"
)

func gridLayer(t *testing.T, nx, ny int) *spatial.Layer {
	t.Helper()
	l, err := spatial.NewGridLayer(spatial.NewPosition2D(0, 0), spatial.Extent{X: 10, Y: 10}, spatial.Periodic{}, [3]int{nx, ny, 0}, "iaf")
	if err != nil {
		t.Fatalf("NewGridLayer: %v", err)
	}
	return l
}

func baseBuilder(src, tgt *spatial.Layer) *Builder {
	return &Builder{
		SourceLayer:        src,
		TargetLayer:        tgt,
		Extent:             spatial.Extent{X: 10, Y: 10},
		Periodic:           spatial.Periodic{},
		NumThreads:         1,
		TargetsHaveProxies: true,
	}
}

func TestBuildRejectsWithoutProxies(t *testing.T) {
	src, tgt := gridLayer(t, 2, 2), gridLayer(t, 2, 2)
	b := baseBuilder(src, tgt)
	b.TargetsHaveProxies = false
	_, err := b.Build(Spec{Rule: PairwiseBernoulliTarget, Mask: spatial.AllMask{Dim: 2}})
	if err == nil {
		t.Fatalf("expected IllegalConnection error without target proxies")
	}
}

func TestBuildUnknownRule(t *testing.T) {
	src, tgt := gridLayer(t, 2, 2), gridLayer(t, 2, 2)
	b := baseBuilder(src, tgt)
	_, err := b.Build(Spec{Rule: Rule(99)})
	if err == nil {
		t.Fatalf("expected BadProperty error for unknown rule")
	}
}

func TestPairwiseBernoulliProbabilityOneConnectsEveryPair(t *testing.T) {
	src, tgt := gridLayer(t, 2, 2), gridLayer(t, 2, 2)
	b := baseBuilder(src, tgt)

	pairs, err := b.Build(Spec{
		Rule:           PairwiseBernoulliTarget,
		Mask:           spatial.AllMask{Dim: 2},
		Probability:    param.Constant{V: 1},
		Weight:         param.Constant{V: 1.0},
		Delay:          param.Constant{V: 1.0},
		AllowAutapses:  true,
		AllowMultapses: true,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := src.Size() * tgt.Size()
	if len(pairs) != want {
		t.Fatalf("got %d pairs, want %d (probability 1 connects every pair)", len(pairs), want)
	}
}

func TestPairwiseBernoulliProbabilityZeroConnectsNothing(t *testing.T) {
	src, tgt := gridLayer(t, 2, 2), gridLayer(t, 2, 2)
	b := baseBuilder(src, tgt)

	pairs, err := b.Build(Spec{
		Rule:           PairwiseBernoulliTarget,
		Mask:           spatial.AllMask{Dim: 2},
		Probability:    param.Constant{V: 0},
		Weight:         param.Constant{V: 1.0},
		Delay:          param.Constant{V: 1.0},
		AllowAutapses:  true,
		AllowMultapses: true,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(pairs) != 0 {
		t.Fatalf("got %d pairs, want 0", len(pairs))
	}
}

func TestPairwiseBernoulliDisallowsAutapsesOnSameLayer(t *testing.T) {
	l := gridLayer(t, 2, 2)
	b := baseBuilder(l, l)

	pairs, err := b.Build(Spec{
		Rule:        PairwiseBernoulliTarget,
		Mask:        spatial.AllMask{Dim: 2},
		Probability: param.Constant{V: 1},
		Weight:      param.Constant{V: 1.0},
		Delay:       param.Constant{V: 1.0},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, p := range pairs {
		if p.Source == p.Target {
			t.Fatalf("found autapse %+v despite AllowAutapses=false", p)
		}
	}
	want := l.Size()*l.Size() - l.Size()
	if len(pairs) != want {
		t.Fatalf("got %d pairs, want %d", len(pairs), want)
	}
}

func TestFixedIndegreeDrawsExactlyNPerTarget(t *testing.T) {
	src, tgt := gridLayer(t, 4, 4), gridLayer(t, 2, 2)
	b := baseBuilder(src, tgt)

	pairs, err := b.Build(Spec{
		Rule:           FixedIndegree,
		Mask:           spatial.AllMask{Dim: 2},
		N:              3,
		Weight:         param.Constant{V: 1.0},
		Delay:          param.Constant{V: 1.0},
		AllowAutapses:  true,
		AllowMultapses: false,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := 3 * tgt.Size()
	if len(pairs) != want {
		t.Fatalf("got %d pairs, want %d (N=3 per target)", len(pairs), want)
	}
	perTarget := map[int]int{}
	for _, p := range pairs {
		perTarget[p.Target]++
	}
	for ti, n := range perTarget {
		if n != 3 {
			t.Fatalf("target %d got %d connections, want 3", ti, n)
		}
	}
}

func TestFixedIndegreeFailsWhenPoolSmallerThanNWithoutMultapses(t *testing.T) {
	src, tgt := gridLayer(t, 2, 2), gridLayer(t, 1, 1)
	b := baseBuilder(src, tgt)

	_, err := b.Build(Spec{
		Rule:           FixedIndegree,
		Mask:           spatial.AllMask{Dim: 2},
		N:              10,
		Weight:         param.Constant{V: 1.0},
		Delay:          param.Constant{V: 1.0},
		AllowAutapses:  true,
		AllowMultapses: false,
	})
	if err == nil {
		t.Fatalf("expected KernelException when pool smaller than N and multapses disallowed")
	}
}

func TestFixedOutdegreeDrawsExactlyNPerSource(t *testing.T) {
	src, tgt := gridLayer(t, 2, 2), gridLayer(t, 4, 4)
	b := baseBuilder(src, tgt)

	pairs, err := b.Build(Spec{
		Rule:           FixedOutdegree,
		Mask:           spatial.AllMask{Dim: 2},
		N:              3,
		Weight:         param.Constant{V: 1.0},
		Delay:          param.Constant{V: 1.0},
		AllowAutapses:  true,
		AllowMultapses: false,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := 3 * src.Size()
	if len(pairs) != want {
		t.Fatalf("got %d pairs, want %d (N=3 per source)", len(pairs), want)
	}
	perSource := map[int]int{}
	for _, p := range pairs {
		perSource[p.Source]++
	}
	for si, n := range perSource {
		if n != 3 {
			t.Fatalf("source %d got %d connections, want 3", si, n)
		}
	}
}

func TestEvalWeightDelayReceptorDefaultsReceptorToZero(t *testing.T) {
	src, tgt := gridLayer(t, 2, 2), gridLayer(t, 2, 2)
	b := baseBuilder(src, tgt)
	ctx := b.spatialContext(0, 0, tgt.Position(0))

	weight, delay, receptor, err := b.evalWeightDelayReceptor(Spec{
		Weight: param.Constant{V: 2.5},
		Delay:  param.Constant{V: 1.5},
	}, ctx)
	if err != nil {
		t.Fatalf("evalWeightDelayReceptor: %v", err)
	}
	if weight != 2.5 || delay != 1.5 || receptor != 0 {
		t.Fatalf("got (%g, %g, %d), want (2.5, 1.5, 0)", weight, delay, receptor)
	}
}
