package spatial

import (
	"math"

	"github.com/emer/emergent/v2/relpos"

	"github.com/SynapticNetworks/gridspike/kernelerr"
)

// Layer is an ordered homogeneous population of nodes with either explicit
// free positions or an implicit regular grid. A free layer
// stores only the positions it locally owns; a grid layer stores shape and
// derives positions by integer arithmetic.
type Layer struct {
	Name      string
	LowerLeft Position
	Extent    Extent
	Periodic  Periodic
	Elements  string // node model name

	// Placement is this layer's relative-position record, borrowed from
	// relpos's "a layer carries its own placement relative to another
	// layer" convention (used across the emer pack to lay out network
	// diagrams); here it is purely bookkeeping metadata a driver can use
	// to arrange layers spatially relative to one another; it plays no
	// role in the ntree/mask geometry, which always works in the layer's
	// own absolute LowerLeft/Extent frame.
	Placement relpos.Pos

	// Grid layer fields. Shape[i] is the node count along axis i.
	IsGrid bool
	Shape  [3]int

	// Free layer fields: locally owned positions, parallel to NodeIDs.
	Positions []Position
	NodeIDs   []int

	ntree          *Ntree
	ntreeNodeCount int
}

// NewGridLayer builds a regular-grid layer. shape components must be > 0.
func NewGridLayer(lowerLeft Position, extent Extent, periodic Periodic, shape [3]int, elements string) (*Layer, error) {
	dim := lowerLeft.Dim
	for axis := 0; axis < dim; axis++ {
		if shape[axis] <= 0 {
			return nil, kernelerr.NewBadProperty("layer", "shape", "every shape component must be positive")
		}
	}
	return &Layer{LowerLeft: lowerLeft, Extent: extent, Periodic: periodic, Elements: elements, IsGrid: true, Shape: shape}, nil
}

// NewFreeLayer builds a free layer from explicit positions, validating that
// none fall outside the declared extent and that the set is non-empty.
func NewFreeLayer(lowerLeft Position, extent Extent, periodic Periodic, positions []Position, nodeIDs []int, elements string) (*Layer, error) {
	if len(positions) == 0 {
		return nil, kernelerr.NewBadProperty("layer", "positions", "must not be empty")
	}
	if len(positions) != len(nodeIDs) {
		return nil, kernelerr.NewBadProperty("layer", "positions", "must align 1:1 with node_ids")
	}
	l := &Layer{LowerLeft: lowerLeft, Extent: extent, Periodic: periodic, Elements: elements}
	for _, p := range positions {
		if !l.withinExtent(p) {
			return nil, kernelerr.NewBadProperty("layer", "positions", "point lies outside declared extent")
		}
	}
	l.Positions = append(l.Positions, positions...)
	l.NodeIDs = append(l.NodeIDs, nodeIDs...)
	return l, nil
}

func (l *Layer) withinExtent(p Position) bool {
	upper := l.LowerLeft.Add(Position{Dim: l.LowerLeft.Dim, X: l.Extent.X, Y: l.Extent.Y, Z: l.Extent.Z})
	box := BoundingBox{Min: l.LowerLeft, Max: upper}
	return box.Contains(p)
}

// Size returns the number of nodes in the layer.
func (l *Layer) Size() int {
	if l.IsGrid {
		n := l.Shape[0] * l.Shape[1]
		if l.LowerLeft.Dim == 3 {
			n *= l.Shape[2]
		}
		return n
	}
	return len(l.Positions)
}

// GridPosition derives the i-th grid layer position from index-to-gridpos
// arithmetic using the shape vector and extent. Index order
// is row-major: x varies fastest.
func (l *Layer) GridPosition(i int) Position {
	dim := l.LowerLeft.Dim
	nx, ny := l.Shape[0], l.Shape[1]
	ix := i % nx
	iy := (i / nx) % ny
	stepX := l.Extent.X / float64(nx)
	stepY := l.Extent.Y / float64(ny)
	x := l.LowerLeft.X + (float64(ix)+0.5)*stepX
	y := l.LowerLeft.Y + (float64(iy)+0.5)*stepY
	if dim == 2 {
		return Position{Dim: 2, X: x, Y: y}
	}
	nz := l.Shape[2]
	iz := i / (nx * ny)
	stepZ := l.Extent.Z / float64(nz)
	z := l.LowerLeft.Z + (float64(iz)+0.5)*stepZ
	return Position{Dim: 3, X: x, Y: y, Z: z}
}

// Position returns the i-th node's position, whether the layer is a grid
// or free layer.
func (l *Layer) Position(i int) Position {
	if l.IsGrid {
		return l.GridPosition(i)
	}
	return l.Positions[i]
}

// Fold wraps p into the layer's canonical region on every periodic axis.
func (l *Layer) Fold(p Position) Position {
	out := p
	if l.Periodic.X {
		out.X = foldAxis(p.X, l.LowerLeft.X, l.Extent.X)
	}
	if l.Periodic.Y {
		out.Y = foldAxis(p.Y, l.LowerLeft.Y, l.Extent.Y)
	}
	if p.Dim == 3 && l.Periodic.Z {
		out.Z = foldAxis(p.Z, l.LowerLeft.Z, l.Extent.Z)
	}
	return out
}

func foldAxis(v, lower, extent float64) float64 {
	if extent <= 0 {
		return v
	}
	rel := math.Mod(v-lower, extent)
	if rel < 0 {
		rel += extent
	}
	return lower + rel
}

// Distance returns the distance between the i-th and j-th node, honoring
// the layer's periodicity.
func (l *Layer) Distance(i, j int) float64 {
	return PeriodicDistance(l.Position(i), l.Position(j), l.Extent, l.Periodic)
}

// Displacement returns the displacement from the i-th to the j-th node,
// honoring the layer's periodicity.
func (l *Layer) Displacement(i, j int) Position {
	return Displacement(l.Position(i), l.Position(j), l.Extent, l.Periodic)
}

// NtreeIndex lazily builds (or rebuilds, after invalidation) and returns the
// spatial index over this layer's positions, with payload = node index.
// The tree is cached on the layer and invalidated whenever the layer's
// population changes.
func (l *Layer) NtreeIndex() *Ntree {
	n := l.Size()
	if l.ntree != nil && l.ntreeNodeCount == n {
		return l.ntree
	}
	upper := l.LowerLeft.Add(Position{Dim: l.LowerLeft.Dim, X: l.Extent.X, Y: l.Extent.Y, Z: l.Extent.Z})
	t := NewNtree(BoundingBox{Min: l.LowerLeft, Max: upper}, DefaultLeafCapacity, DefaultMaxDepth)
	for i := 0; i < n; i++ {
		// Insertion failures here would indicate a position outside the
		// declared extent, already rejected at layer construction for
		// free layers and guaranteed in-range for grid layers.
		_ = t.Insert(l.Position(i), i)
	}
	l.ntree = t
	l.ntreeNodeCount = n
	return t
}

// InvalidateNtree drops the cached spatial index, forcing a rebuild on
// next use. Call after mutating Positions/NodeIDs directly.
func (l *Layer) InvalidateNtree() {
	l.ntree = nil
}

// SetPlacement records this layer's position relative to another named
// layer, applying relpos's own default scale/space/offset values.
func (l *Layer) SetPlacement(rel relpos.Relations, other string, space float32) {
	l.Placement.Rel = rel
	l.Placement.Other = other
	l.Placement.Space = space
	l.Placement.Defaults()
}
