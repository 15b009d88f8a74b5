package spatial

import (
	"math"

	"github.com/SynapticNetworks/gridspike/kernelerr"
)

// Mask is a geometric predicate over positions of dimension D. Every mask exposes Inside (point test), InsideBox/OutsideBox
// (whole-box containment/disjointness tests used by the N-tree's masked
// iterator to prune whole subtrees), and a finite BoundingBox.
type Mask interface {
	Inside(p Position) bool
	InsideBox(b BoundingBox) bool
	OutsideBox(b BoundingBox) bool
	BoundingBox() BoundingBox
}

const inf = math.MaxFloat64 / 4

func unbounded(dim int) BoundingBox {
	neg := Position{Dim: dim, X: -inf, Y: -inf, Z: -inf}
	pos := Position{Dim: dim, X: inf, Y: inf, Z: inf}
	return BoundingBox{Min: neg, Max: pos}
}

// AllMask matches every point.
type AllMask struct{ Dim int }

func (m AllMask) Inside(Position) bool           { return true }
func (m AllMask) InsideBox(BoundingBox) bool      { return true }
func (m AllMask) OutsideBox(BoundingBox) bool     { return false }
func (m AllMask) BoundingBox() BoundingBox        { return unbounded(m.Dim) }

// BoxMask is an axis-aligned or rotated box. Azimuth is the rotation about
// the Z axis (or the only rotation in 2D); Polar additionally rotates a 3D
// box about the X axis. Both are in radians.
type BoxMask struct {
	LowerLeft, Upper Position
	Azimuth, Polar   float64
}

// NewBoxMask validates and builds an axis-aligned (Azimuth=Polar=0) or
// rotated box mask.
func NewBoxMask(lowerLeft, upper Position, azimuth, polar float64) (*BoxMask, error) {
	for axis := 0; axis < lowerLeft.Dim; axis++ {
		if lowerLeft.Coord(axis) >= upper.Coord(axis) {
			return nil, kernelerr.NewBadProperty("box_mask", "bounds", "lower_left must be strictly less than upper on every axis")
		}
	}
	return &BoxMask{LowerLeft: lowerLeft, Upper: upper, Azimuth: azimuth, Polar: polar}, nil
}

// toLocal rotates a point into the box's own (unrotated) frame.
func (m *BoxMask) toLocal(p Position) Position {
	if m.Azimuth == 0 && m.Polar == 0 {
		return p
	}
	ca, sa := math.Cos(-m.Azimuth), math.Sin(-m.Azimuth)
	x := p.X*ca - p.Y*sa
	y := p.X*sa + p.Y*ca
	z := p.Z
	if m.Polar != 0 && p.Dim == 3 {
		cp, sp := math.Cos(-m.Polar), math.Sin(-m.Polar)
		y2 := y*cp - z*sp
		z2 := y*sp + z*cp
		y, z = y2, z2
	}
	return Position{Dim: p.Dim, X: x, Y: y, Z: z}
}

func (m *BoxMask) Inside(p Position) bool {
	l := m.toLocal(p)
	for axis := 0; axis < p.Dim; axis++ {
		v := l.Coord(axis)
		if v < m.LowerLeft.Coord(axis) || v > m.Upper.Coord(axis) {
			return false
		}
	}
	return true
}

func (m *BoxMask) corners() []Position {
	dim := m.LowerLeft.Dim
	n := 1 << uint(dim)
	out := make([]Position, n)
	for i := 0; i < n; i++ {
		c := Position{Dim: dim}
		for axis := 0; axis < dim; axis++ {
			lo := m.LowerLeft.Coord(axis)
			hi := m.Upper.Coord(axis)
			if i&(1<<uint(axis)) != 0 {
				c = c.WithCoord(axis, hi)
			} else {
				c = c.WithCoord(axis, lo)
			}
		}
		out[i] = c
	}
	return out
}

// InsideBox is true iff all 2^D corners of b are inside the mask.
func (m *BoxMask) InsideBox(b BoundingBox) bool {
	for _, c := range boxCorners(b) {
		if !m.Inside(c) {
			return false
		}
	}
	return true
}

// OutsideBox is true if b's projection on any axis is disjoint from the
// mask's own bounding box projection (a conservative, sound test: it may
// return false for some genuinely-outside boxes but never true for a box
// that intersects the mask).
func (m *BoxMask) OutsideBox(b BoundingBox) bool {
	return m.BoundingBox().DisjointBox(b)
}

// BoundingBox accounts for rotation: the axis-aligned box enclosing the
// rotated corners.
func (m *BoxMask) BoundingBox() BoundingBox {
	if m.Azimuth == 0 && m.Polar == 0 {
		return BoundingBox{Min: m.LowerLeft, Max: m.Upper}
	}
	dim := m.LowerLeft.Dim
	min := Position{Dim: dim, X: inf, Y: inf, Z: inf}
	max := Position{Dim: dim, X: -inf, Y: -inf, Z: -inf}
	for _, c := range m.corners() {
		w := m.fromLocal(c)
		for axis := 0; axis < dim; axis++ {
			v := w.Coord(axis)
			if v < min.Coord(axis) {
				min = min.WithCoord(axis, v)
			}
			if v > max.Coord(axis) {
				max = max.WithCoord(axis, v)
			}
		}
	}
	return BoundingBox{Min: min, Max: max}
}

func (m *BoxMask) fromLocal(p Position) Position {
	if m.Azimuth == 0 && m.Polar == 0 {
		return p
	}
	x, y, z := p.X, p.Y, p.Z
	if m.Polar != 0 && p.Dim == 3 {
		cp, sp := math.Cos(m.Polar), math.Sin(m.Polar)
		y2 := y*cp - z*sp
		z2 := y*sp + z*cp
		y, z = y2, z2
	}
	ca, sa := math.Cos(m.Azimuth), math.Sin(m.Azimuth)
	x2 := x*ca - y*sa
	y2 := x*sa + y*ca
	return Position{Dim: p.Dim, X: x2, Y: y2, Z: z}
}

func boxCorners(b BoundingBox) []Position {
	dim := b.Min.Dim
	n := 1 << uint(dim)
	out := make([]Position, n)
	for i := 0; i < n; i++ {
		c := Position{Dim: dim}
		for axis := 0; axis < dim; axis++ {
			if i&(1<<uint(axis)) != 0 {
				c = c.WithCoord(axis, b.Max.Coord(axis))
			} else {
				c = c.WithCoord(axis, b.Min.Coord(axis))
			}
		}
		out[i] = c
	}
	return out
}

// BallMask is a Euclidean ball of the given radius centered at Center.
type BallMask struct {
	Center Position
	Radius float64
}

// NewBallMask validates and builds a ball mask.
func NewBallMask(center Position, radius float64) (*BallMask, error) {
	if radius <= 0 {
		return nil, kernelerr.NewBadProperty("ball_mask", "radius", "must be positive")
	}
	return &BallMask{Center: center, Radius: radius}, nil
}

func (m *BallMask) Inside(p Position) bool {
	return Distance(p, m.Center) <= m.Radius
}

// InsideBox is true iff all corners are inside.
func (m *BallMask) InsideBox(b BoundingBox) bool {
	for _, c := range boxCorners(b) {
		if !m.Inside(c) {
			return false
		}
	}
	return true
}

// OutsideBox is true iff the ball's center is farther from the box than
// the radius.
func (m *BallMask) OutsideBox(b BoundingBox) bool {
	return distancePointToBox(m.Center, b) > m.Radius
}

func (m *BallMask) BoundingBox() BoundingBox {
	r := Position{Dim: m.Center.Dim, X: m.Radius, Y: m.Radius, Z: m.Radius}
	return BoundingBox{Min: m.Center.Sub(r), Max: m.Center.Add(r)}
}

func distancePointToBox(p Position, b BoundingBox) float64 {
	clamp := func(v, lo, hi float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	cx := clamp(p.X, b.Min.X, b.Max.X)
	cy := clamp(p.Y, b.Min.Y, b.Max.Y)
	closest := Position{Dim: p.Dim, X: cx, Y: cy}
	if p.Dim == 3 {
		closest.Z = clamp(p.Z, b.Min.Z, b.Max.Z)
	}
	return Distance(p, closest)
}

// EllipseMask is a (possibly correlated, 2D) or axis-aligned ellipsoid
// (3D) mask, normalized-coordinate test.
type EllipseMask struct {
	Center              Position
	StdX, StdY, StdZ    float64
	Rho                 float64 // correlation, 2D only
	constXY             float64
}

// NewEllipseMask validates std>0 and |rho|<1 and precomputes the
// normalization constant 1/(2*(1-rho^2)) used by the correlated 2D test,
// which applies it to coordinates already divided by their std.
func NewEllipseMask(center Position, stdX, stdY, stdZ, rho float64) (*EllipseMask, error) {
	if stdX <= 0 || stdY <= 0 || (center.Dim == 3 && stdZ <= 0) {
		return nil, kernelerr.NewBadProperty("ellipse_mask", "std", "must be strictly positive")
	}
	if rho <= -1 || rho >= 1 {
		return nil, kernelerr.NewBadProperty("ellipse_mask", "rho", "must satisfy -1 < rho < 1")
	}
	m := &EllipseMask{Center: center, StdX: stdX, StdY: stdY, StdZ: stdZ, Rho: rho}
	if rho != 0 {
		m.constXY = 1.0 / (2 * (1 - rho*rho))
	}
	return m, nil
}

func (m *EllipseMask) Inside(p Position) bool {
	dx := (p.X - m.Center.X) / m.StdX
	dy := (p.Y - m.Center.Y) / m.StdY
	var val float64
	if m.Rho != 0 {
		val = m.constXY * (dx*dx - 2*m.Rho*dx*dy + dy*dy)
	} else {
		val = 0.5 * (dx*dx + dy*dy)
	}
	if p.Dim == 3 {
		dz := (p.Z - m.Center.Z) / m.StdZ
		val += 0.5 * dz * dz
	}
	return val <= 0.5
}

func (m *EllipseMask) InsideBox(b BoundingBox) bool {
	for _, c := range boxCorners(b) {
		if !m.Inside(c) {
			return false
		}
	}
	return true
}

func (m *EllipseMask) OutsideBox(b BoundingBox) bool {
	return m.BoundingBox().DisjointBox(b)
}

func (m *EllipseMask) BoundingBox() BoundingBox {
	// Conservative axis-aligned bound: the ellipse never extends past
	// +/- 1 std-equivalent scaled by sqrt(2) on each axis given the 0.5
	// normalized-radius test above.
	scale := math.Sqrt2
	r := Position{Dim: m.Center.Dim, X: m.StdX * scale, Y: m.StdY * scale, Z: m.StdZ * scale}
	return BoundingBox{Min: m.Center.Sub(r), Max: m.Center.Add(r)}
}

// GridMask selects an integer-cell region; only valid against grid layers.
type GridMask struct {
	LowerLeft, Upper [3]int // inclusive integer cell range
	Dim              int
}

func (m *GridMask) insideCell(cell [3]int) bool {
	for axis := 0; axis < m.Dim; axis++ {
		if cell[axis] < m.LowerLeft[axis] || cell[axis] > m.Upper[axis] {
			return false
		}
	}
	return true
}

func (m *GridMask) Inside(p Position) bool {
	cell := [3]int{int(math.Round(p.X)), int(math.Round(p.Y)), int(math.Round(p.Z))}
	return m.insideCell(cell)
}

func (m *GridMask) InsideBox(b BoundingBox) bool {
	for _, c := range boxCorners(b) {
		if !m.Inside(c) {
			return false
		}
	}
	return true
}

func (m *GridMask) OutsideBox(b BoundingBox) bool {
	return m.BoundingBox().DisjointBox(b)
}

func (m *GridMask) BoundingBox() BoundingBox {
	min := Position{Dim: m.Dim, X: float64(m.LowerLeft[0]), Y: float64(m.LowerLeft[1]), Z: float64(m.LowerLeft[2])}
	max := Position{Dim: m.Dim, X: float64(m.Upper[0]), Y: float64(m.Upper[1]), Z: float64(m.Upper[2])}
	return BoundingBox{Min: min, Max: max}
}

// Intersection is the logical AND of two masks.
type Intersection struct{ A, B Mask }

func (m Intersection) Inside(p Position) bool { return m.A.Inside(p) && m.B.Inside(p) }
func (m Intersection) InsideBox(b BoundingBox) bool {
	return m.A.InsideBox(b) && m.B.InsideBox(b)
}
func (m Intersection) OutsideBox(b BoundingBox) bool {
	return m.A.OutsideBox(b) || m.B.OutsideBox(b)
}
func (m Intersection) BoundingBox() BoundingBox {
	ab, bb := m.A.BoundingBox(), m.B.BoundingBox()
	return intersectBoxes(ab, bb)
}

func intersectBoxes(a, b BoundingBox) BoundingBox {
	max := func(x, y float64) float64 {
		if x > y {
			return x
		}
		return y
	}
	min := func(x, y float64) float64 {
		if x < y {
			return x
		}
		return y
	}
	dim := a.Min.Dim
	lo := Position{Dim: dim, X: max(a.Min.X, b.Min.X), Y: max(a.Min.Y, b.Min.Y), Z: max(a.Min.Z, b.Min.Z)}
	hi := Position{Dim: dim, X: min(a.Max.X, b.Max.X), Y: min(a.Max.Y, b.Max.Y), Z: min(a.Max.Z, b.Max.Z)}
	return BoundingBox{Min: lo, Max: hi}
}

// Union is the logical OR of two masks.
type Union struct{ A, B Mask }

func (m Union) Inside(p Position) bool    { return m.A.Inside(p) || m.B.Inside(p) }
func (m Union) InsideBox(b BoundingBox) bool {
	// inside(union) = OR of children's inside(box); a
	// sound-but-incomplete test when neither child alone covers the box
	// but their union does is acceptable for the N-tree's "all-in" fast
	// path, which only needs a sufficient (not necessary) condition.
	return m.A.InsideBox(b) || m.B.InsideBox(b)
}
func (m Union) OutsideBox(b BoundingBox) bool {
	return m.A.OutsideBox(b) && m.B.OutsideBox(b)
}
func (m Union) BoundingBox() BoundingBox {
	ab, bb := m.A.BoundingBox(), m.B.BoundingBox()
	min := func(x, y float64) float64 {
		if x < y {
			return x
		}
		return y
	}
	max := func(x, y float64) float64 {
		if x > y {
			return x
		}
		return y
	}
	dim := ab.Min.Dim
	lo := Position{Dim: dim, X: min(ab.Min.X, bb.Min.X), Y: min(ab.Min.Y, bb.Min.Y), Z: min(ab.Min.Z, bb.Min.Z)}
	hi := Position{Dim: dim, X: max(ab.Max.X, bb.Max.X), Y: max(ab.Max.Y, bb.Max.Y), Z: max(ab.Max.Z, bb.Max.Z)}
	return BoundingBox{Min: lo, Max: hi}
}

// Difference is A AND NOT B.
type Difference struct{ A, B Mask }

func (m Difference) Inside(p Position) bool { return m.A.Inside(p) && !m.B.Inside(p) }
func (m Difference) InsideBox(b BoundingBox) bool {
	return m.A.InsideBox(b) && m.B.OutsideBox(b)
}
func (m Difference) OutsideBox(b BoundingBox) bool {
	return m.A.OutsideBox(b) || m.B.InsideBox(b)
}
func (m Difference) BoundingBox() BoundingBox { return m.A.BoundingBox() }

// Converse point-reflects the wrapped mask through the origin; used when a
// target-anchored mask must be applied from the source's perspective.
type Converse struct{ Inner Mask }

func (m Converse) Inside(p Position) bool {
	return m.Inner.Inside(p.Scale(-1))
}
func (m Converse) InsideBox(b BoundingBox) bool {
	return m.Inner.InsideBox(reflectBox(b))
}
func (m Converse) OutsideBox(b BoundingBox) bool {
	return m.Inner.OutsideBox(reflectBox(b))
}
func (m Converse) BoundingBox() BoundingBox {
	return reflectBox(m.Inner.BoundingBox())
}

func reflectBox(b BoundingBox) BoundingBox {
	return BoundingBox{Min: b.Max.Scale(-1), Max: b.Min.Scale(-1)}
}

// Anchored translates the wrapped mask by offset; this is how a mask
// dictionary's geometric predicate is applied "at" a particular target or
// source position during connection building.
type Anchored struct {
	Inner  Mask
	Offset Position
}

func (m Anchored) Inside(p Position) bool {
	return m.Inner.Inside(p.Sub(m.Offset))
}
func (m Anchored) InsideBox(b BoundingBox) bool {
	return m.Inner.InsideBox(BoundingBox{Min: b.Min.Sub(m.Offset), Max: b.Max.Sub(m.Offset)})
}
func (m Anchored) OutsideBox(b BoundingBox) bool {
	return m.Inner.OutsideBox(BoundingBox{Min: b.Min.Sub(m.Offset), Max: b.Max.Sub(m.Offset)})
}
func (m Anchored) BoundingBox() BoundingBox {
	b := m.Inner.BoundingBox()
	return BoundingBox{Min: b.Min.Add(m.Offset), Max: b.Max.Add(m.Offset)}
}

// AnchorAt is a convenience constructor for Anchored.
func AnchorAt(m Mask, at Position) Mask {
	return Anchored{Inner: m, Offset: at}
}
