// Package param implements the composable parameter DAG used to evaluate
// weights, delays, probabilities, and initial state values.
//
// Per-thread randomness is delegated to github.com/emer/emergent/v2/erand's
// package-level generators (ZeroOne, UniformMinMax, ...), each called with
// the owning thread's index so that "random-number consumption order
// within one thread is deterministic given the thread's seed"
// falls out of erand's own per-thread stream bookkeeping rather than a
// second, hand-rolled RNG layer.
package param

import (
	"math"

	"github.com/emer/emergent/v2/erand"
	"github.com/google/uuid"

	"github.com/SynapticNetworks/gridspike/kernelerr"
	"github.com/SynapticNetworks/gridspike/spatial"
)

// Context is the call site a Parameter evaluates at: a thread (for RNG
// stream selection), an optional owning node, and, for spatial uses, a
// source position, target position, and owning layer.
type Context struct {
	Thread      int
	NodeID      int
	HasNode     bool
	SourcePos   spatial.Position
	TargetPos   spatial.Position
	SourceLayer *spatial.Layer
	HasSpatial  bool
	Extent      spatial.Extent
	Periodic    spatial.Periodic
}

// Parameter is a node in the parameter DAG. Value evaluates it at ctx,
// which may or may not carry spatial information; spatial leaf nodes
// return a BadProperty-flavored KernelException when evaluated outside a
// spatial context.
type Parameter interface {
	Value(ctx Context) (float64, error)
}

// Constant is a leaf yielding a fixed value.
type Constant struct{ V float64 }

func (c Constant) Value(Context) (float64, error) { return c.V, nil }

// --- Arithmetic ---

type binary struct {
	A, B Parameter
	op   func(a, b float64) float64
}

func (b binary) Value(ctx Context) (float64, error) {
	av, err := b.A.Value(ctx)
	if err != nil {
		return 0, err
	}
	bv, err := b.B.Value(ctx)
	if err != nil {
		return 0, err
	}
	return b.op(av, bv), nil
}

func Add(a, b Parameter) Parameter { return binary{a, b, func(x, y float64) float64 { return x + y }} }
func Sub(a, b Parameter) Parameter { return binary{a, b, func(x, y float64) float64 { return x - y }} }
func Mul(a, b Parameter) Parameter { return binary{a, b, func(x, y float64) float64 { return x * y }} }
func Div(a, b Parameter) Parameter { return binary{a, b, func(x, y float64) float64 { return x / y }} }

// --- Elementary functions ---

type unary struct {
	A  Parameter
	op func(float64) float64
}

func (u unary) Value(ctx Context) (float64, error) {
	av, err := u.A.Value(ctx)
	if err != nil {
		return 0, err
	}
	return u.op(av), nil
}

func Exp(a Parameter) Parameter { return unary{a, math.Exp} }
func Sin(a Parameter) Parameter { return unary{a, math.Sin} }
func Cos(a Parameter) Parameter { return unary{a, math.Cos} }
func Pow(a, b Parameter) Parameter {
	return binary{a, b, math.Pow}
}

// --- Comparison (yields 0/1) ---

type cmpOp int

const (
	CmpLT cmpOp = iota
	CmpLE
	CmpGT
	CmpGE
	CmpEQ
	CmpNE
)

// Compare yields 1 if a op b holds, else 0.
func Compare(a, b Parameter, op cmpOp) Parameter {
	return binary{a, b, func(x, y float64) float64 {
		var ok bool
		switch op {
		case CmpLT:
			ok = x < y
		case CmpLE:
			ok = x <= y
		case CmpGT:
			ok = x > y
		case CmpGE:
			ok = x >= y
		case CmpEQ:
			ok = x == y
		case CmpNE:
			ok = x != y
		}
		if ok {
			return 1
		}
		return 0
	}}
}

// --- Conditional (ternary on child value != 0) ---

type cond struct{ If, Then, Else Parameter }

func Cond(ifP, thenP, elseP Parameter) Parameter { return cond{ifP, thenP, elseP} }

func (c cond) Value(ctx Context) (float64, error) {
	iv, err := c.If.Value(ctx)
	if err != nil {
		return 0, err
	}
	if iv != 0 {
		return c.Then.Value(ctx)
	}
	return c.Else.Value(ctx)
}

// --- Min/Max/Clip ---

func Min(a, b Parameter) Parameter {
	return binary{a, b, math.Min}
}
func Max(a, b Parameter) Parameter {
	return binary{a, b, math.Max}
}

type clip struct {
	A      Parameter
	Lo, Hi float64
}

func Clip(a Parameter, lo, hi float64) Parameter { return clip{a, lo, hi} }

func (c clip) Value(ctx Context) (float64, error) {
	v, err := c.A.Value(ctx)
	if err != nil {
		return 0, err
	}
	if v < c.Lo {
		return c.Lo, nil
	}
	if v > c.Hi {
		return c.Hi, nil
	}
	return v, nil
}

// --- Debug tagging ---

// Tagged wraps a Parameter with an opaque, human-meaningless identity
// handle, for diagnostics when many distribution nodes of the same shape
// are composed on the fly and a caller wants to log or compare node
// identities without a node ever needing a meaningful name — two separate
// normal(0, 1) parameters used in different parts of a DAG are distinct
// generator-state-owning instances, and Tagged.ID distinguishes them. Used
// by every distribution constructor below. Node/connection identities
// themselves stay integer per spec.md §3; this is debugging-only.
type Tagged struct {
	Parameter
	id uuid.UUID
}

// Tag wraps p with a freshly generated debug identity.
func Tag(p Parameter) Tagged { return Tagged{Parameter: p, id: uuid.New()} }

// ID returns the tag's opaque handle.
func (t Tagged) ID() string { return t.id.String() }

// --- Redraw ---

// Redraw resamples Inner up to MaxAttempts times until the value falls in
// [Lo, Hi]; exceeding the bound raises KernelException.
type Redraw struct {
	Inner       Parameter
	Lo, Hi      float64
	MaxAttempts int
}

func (r Redraw) Value(ctx Context) (float64, error) {
	max := r.MaxAttempts
	if max <= 0 {
		max = 100
	}
	for i := 0; i < max; i++ {
		v, err := r.Inner.Value(ctx)
		if err != nil {
			return 0, err
		}
		if v >= r.Lo && v <= r.Hi {
			return v, nil
		}
	}
	return 0, kernelerr.NewKernelException("redraw", "exceeded max attempts without landing in [lo, hi]")
}

// --- Distributions ---
// Each distribution draws through erand's per-thread stream, selected by
// ctx.Thread, so "one generator state per thread" is the
// thread-indexed stream erand itself owns.

type uniformDist struct{ Lo, Hi float64 }

// NewUniform validates lo < hi and builds a uniform(lo, hi) distribution,
// tagged with a stable debug identity distinct from every other node built
// by this or any other distribution constructor.
func NewUniform(lo, hi float64) (Parameter, error) {
	if lo >= hi {
		return nil, kernelerr.NewBadProperty("uniform", "bounds", "lo must be < hi")
	}
	return Tag(uniformDist{lo, hi}), nil
}

func (d uniformDist) Value(ctx Context) (float64, error) {
	return erand.UniformMinMax(d.Lo, d.Hi, ctx.Thread), nil
}

type normalDist struct{ Mu, Sigma float64 }

// NewNormal validates sigma > 0 and builds a normal(mu, sigma) distribution,
// tagged with a stable debug identity.
func NewNormal(mu, sigma float64) (Parameter, error) {
	if sigma <= 0 {
		return nil, kernelerr.NewBadProperty("normal", "sigma", "must be positive")
	}
	return Tag(normalDist{mu, sigma}), nil
}

func (d normalDist) Value(ctx Context) (float64, error) {
	rp := erand.RndParams{Dist: erand.Gaussian, Mean: d.Mu, Var: d.Sigma}
	return rp.Gen(ctx.Thread), nil
}

type lognormalDist struct{ Mu, Sigma float64 }

// NewLogNormal validates sigma > 0 and builds a lognormal(mu, sigma)
// distribution, tagged with a stable debug identity.
func NewLogNormal(mu, sigma float64) (Parameter, error) {
	if sigma <= 0 {
		return nil, kernelerr.NewBadProperty("lognormal", "sigma", "must be positive")
	}
	return Tag(lognormalDist{mu, sigma}), nil
}

func (d lognormalDist) Value(ctx Context) (float64, error) {
	rp := erand.RndParams{Dist: erand.Gaussian, Mean: d.Mu, Var: d.Sigma}
	return math.Exp(rp.Gen(ctx.Thread)), nil
}

type exponentialDist struct{ Beta float64 }

// NewExponential validates beta > 0 and builds an exponential(beta)
// distribution, tagged with a stable debug identity.
func NewExponential(beta float64) (Parameter, error) {
	if beta <= 0 {
		return nil, kernelerr.NewBadProperty("exponential", "beta", "must be positive")
	}
	return Tag(exponentialDist{beta}), nil
}

func (d exponentialDist) Value(ctx Context) (float64, error) {
	u := erand.ZeroOne(ctx.Thread)
	return -d.Beta * math.Log1p(-u), nil
}

type gammaDist struct{ Kappa, Theta float64 }

// NewGammaDist validates kappa, theta > 0 and builds a gamma(kappa, theta)
// distribution using erand's RndParams gamma generator, tagged with a
// stable debug identity.
func NewGammaDist(kappa, theta float64) (Parameter, error) {
	if kappa <= 0 || theta <= 0 {
		return nil, kernelerr.NewBadProperty("gamma", "kappa/theta", "must be positive")
	}
	return Tag(gammaDist{kappa, theta}), nil
}

func (d gammaDist) Value(ctx Context) (float64, error) {
	rp := erand.RndParams{Dist: erand.Gamma, Par: d.Kappa, Var: d.Theta}
	return rp.Gen(ctx.Thread), nil
}

// --- Spatial nodes ---

type nodePos struct{ Axis int }

// NodePos returns the Axis-th coordinate of the node's own position.
func NodePos(axis int) Parameter { return nodePos{axis} }

func (n nodePos) Value(ctx Context) (float64, error) {
	if !ctx.HasSpatial {
		return 0, kernelerr.NewKernelException("node_pos", "evaluated outside a spatial context")
	}
	return ctx.TargetPos.Coord(n.Axis), nil
}

type sourcePos struct{ Axis int }

// SourcePos is only available during connection building.
func SourcePos(axis int) Parameter { return sourcePos{axis} }

func (n sourcePos) Value(ctx Context) (float64, error) {
	if !ctx.HasSpatial {
		return 0, kernelerr.NewKernelException("source_pos", "available only during connection building")
	}
	return ctx.SourcePos.Coord(n.Axis), nil
}

type targetPos struct{ Axis int }

// TargetPos is only available during connection building.
func TargetPos(axis int) Parameter { return targetPos{axis} }

func (n targetPos) Value(ctx Context) (float64, error) {
	if !ctx.HasSpatial {
		return 0, kernelerr.NewKernelException("target_pos", "available only during connection building")
	}
	return ctx.TargetPos.Coord(n.Axis), nil
}

type distance struct{ Axis int } // Axis < 0 means full Euclidean distance

// Distance returns the Euclidean distance between source and target; with
// axis >= 0, distance restricted to that axis, honoring periodic boundary
// wrap.
func Distance(axis int) Parameter { return distance{axis} }

func (d distance) Value(ctx Context) (float64, error) {
	if !ctx.HasSpatial {
		return 0, kernelerr.NewKernelException("distance", "available only during connection building")
	}
	if d.Axis < 0 {
		return spatial.PeriodicDistance(ctx.SourcePos, ctx.TargetPos, ctx.Extent, ctx.Periodic), nil
	}
	disp := spatial.Displacement(ctx.SourcePos, ctx.TargetPos, ctx.Extent, ctx.Periodic)
	return math.Abs(disp.Coord(d.Axis)), nil
}

// ExpDist computes exp(-x/beta) where x is the evaluated child.
func ExpDist(x Parameter, beta float64) Parameter {
	return unary{x, func(v float64) float64 { return math.Exp(-v / beta) }}
}

// GaussianKernel computes exp(-(x-mu)^2/(2*sigma^2)).
func GaussianKernel(x Parameter, mu, sigma float64) Parameter {
	return unary{x, func(v float64) float64 {
		d := v - mu
		return math.Exp(-(d * d) / (2 * sigma * sigma))
	}}
}

// Gaussian2DKernel is the correlated 2D Gaussian kernel over
// (x - x0, y - y0), evaluated at ctx's source/target displacement.
type Gaussian2DKernel struct {
	SigmaX, SigmaY, Rho float64
}

// NewGaussian2DKernel validates std>0, |rho|<1.
func NewGaussian2DKernel(sigmaX, sigmaY, rho float64) (Parameter, error) {
	if sigmaX <= 0 || sigmaY <= 0 {
		return nil, kernelerr.NewBadProperty("gaussian2d", "sigma", "must be positive")
	}
	if rho <= -1 || rho >= 1 {
		return nil, kernelerr.NewBadProperty("gaussian2d", "rho", "must satisfy -1 < rho < 1")
	}
	return Gaussian2DKernel{sigmaX, sigmaY, rho}, nil
}

func (g Gaussian2DKernel) Value(ctx Context) (float64, error) {
	if !ctx.HasSpatial {
		return 0, kernelerr.NewKernelException("gaussian2d", "available only during connection building")
	}
	disp := spatial.Displacement(ctx.SourcePos, ctx.TargetPos, ctx.Extent, ctx.Periodic)
	dx, dy := disp.X/g.SigmaX, disp.Y/g.SigmaY
	expo := -(dx*dx - 2*g.Rho*dx*dy + dy*dy) / (2 * (1 - g.Rho*g.Rho))
	return math.Exp(expo), nil
}

// GammaKernel computes the gamma-shaped kernel value at x.
func GammaKernel(x Parameter, kappa, theta float64) Parameter {
	return unary{x, func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return math.Pow(v, kappa-1) * math.Exp(-v/theta)
	}}
}
