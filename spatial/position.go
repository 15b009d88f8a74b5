// Package spatial implements the spatially-structured parts of the kernel:
// positions, masks, layers, and the N-tree spatial index used to build
// connections over spatially embedded populations.
//
// Positions are kept as a flat struct carrying up to three coordinates and
// an explicit dimension, covering the D in {2,3} this kernel requires.
package spatial

import "math"

// MaxDim is the largest supported position dimensionality.
const MaxDim = 3

// Position is a D-coordinate tuple, D in {2, 3}. Position arithmetic is
// elementwise.
type Position struct {
	Dim  int
	X, Y, Z float64
}

// NewPosition2D builds a 2-dimensional position.
func NewPosition2D(x, y float64) Position {
	return Position{Dim: 2, X: x, Y: y}
}

// NewPosition3D builds a 3-dimensional position.
func NewPosition3D(x, y, z float64) Position {
	return Position{Dim: 3, X: x, Y: y, Z: z}
}

// Coord returns the axis-th coordinate (0-indexed).
func (p Position) Coord(axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	case 2:
		return p.Z
	default:
		panic("spatial: coordinate axis out of range")
	}
}

// WithCoord returns a copy of p with the axis-th coordinate replaced.
func (p Position) WithCoord(axis int, v float64) Position {
	switch axis {
	case 0:
		p.X = v
	case 1:
		p.Y = v
	case 2:
		p.Z = v
	default:
		panic("spatial: coordinate axis out of range")
	}
	return p
}

// Add returns the elementwise sum p + q. Both must share Dim.
func (p Position) Add(q Position) Position {
	return Position{Dim: p.Dim, X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns the elementwise difference p - q.
func (p Position) Sub(q Position) Position {
	return Position{Dim: p.Dim, X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Scale returns p scaled by s.
func (p Position) Scale(s float64) Position {
	return Position{Dim: p.Dim, X: p.X * s, Y: p.Y * s, Z: p.Z * s}
}

// Distance returns the Euclidean distance between a and b, ignoring
// periodicity.
func Distance(a, b Position) float64 {
	d := a.Sub(b)
	sum := d.X*d.X + d.Y*d.Y
	if a.Dim == 3 {
		sum += d.Z * d.Z
	}
	return math.Sqrt(sum)
}

// Extent is a per-axis box size, used for periodic wrap-around.
type Extent struct {
	Dim     int
	X, Y, Z float64
}

// Periodic is a per-axis periodicity bitmask.
type Periodic struct {
	X, Y, Z bool
}

// wrap1 computes the periodic displacement along one axis: for a periodic
// axis of extent L, the displacement from x to y is
// ((y - x + L/2) mod L) - L/2.
func wrap1(from, to, extent float64) float64 {
	d := to - from
	if extent <= 0 {
		return d
	}
	half := extent / 2
	d = math.Mod(d+half, extent)
	if d < 0 {
		d += extent
	}
	return d - half
}

// Displacement returns the displacement from a to b, honoring per-axis
// periodicity: on a periodic axis the shortest signed wrap-around path is
// used; on a non-periodic axis plain subtraction applies.
func Displacement(a, b Position, extent Extent, periodic Periodic) Position {
	out := Position{Dim: a.Dim}
	if periodic.X {
		out.X = wrap1(a.X, b.X, extent.X)
	} else {
		out.X = b.X - a.X
	}
	if periodic.Y {
		out.Y = wrap1(a.Y, b.Y, extent.Y)
	} else {
		out.Y = b.Y - a.Y
	}
	if a.Dim == 3 {
		if periodic.Z {
			out.Z = wrap1(a.Z, b.Z, extent.Z)
		} else {
			out.Z = b.Z - a.Z
		}
	}
	return out
}

// PeriodicDistance returns the Euclidean norm of Displacement(a, b, ...),
// i.e. distance honoring periodic wrap.
func PeriodicDistance(a, b Position, extent Extent, periodic Periodic) float64 {
	d := Displacement(a, b, extent, periodic)
	sum := d.X*d.X + d.Y*d.Y
	if a.Dim == 3 {
		sum += d.Z * d.Z
	}
	return math.Sqrt(sum)
}

// BoundingBox is an axis-aligned box given by its two extreme corners.
type BoundingBox struct {
	Min, Max Position
}

// Contains reports whether p lies inside the box (inclusive).
func (b BoundingBox) Contains(p Position) bool {
	if p.X < b.Min.X || p.X > b.Max.X {
		return false
	}
	if p.Y < b.Min.Y || p.Y > b.Max.Y {
		return false
	}
	if p.Dim == 3 && (p.Z < b.Min.Z || p.Z > b.Max.Z) {
		return false
	}
	return true
}

// ContainsBox reports whether other is entirely contained in b.
func (b BoundingBox) ContainsBox(other BoundingBox) bool {
	return b.Contains(other.Min) && b.Contains(other.Max)
}

// DisjointBox reports whether b and other share no volume.
func (b BoundingBox) DisjointBox(other BoundingBox) bool {
	if other.Max.X < b.Min.X || other.Min.X > b.Max.X {
		return true
	}
	if other.Max.Y < b.Min.Y || other.Min.Y > b.Max.Y {
		return true
	}
	if b.Min.Dim == 3 && (other.Max.Z < b.Min.Z || other.Min.Z > b.Max.Z) {
		return true
	}
	return false
}

// Center returns the geometric center of the box.
func (b BoundingBox) Center() Position {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Anchor translates a position by a fixed offset. Used by anchored masks
// and by target/source-driven connection building, which anchors the mask
// at the current target (or source).
func Anchor(p, offset Position) Position {
	return p.Add(offset)
}
