package spatial

import (
	"github.com/google/uuid"

	"github.com/SynapticNetworks/gridspike/kernelerr"
)

// Default leaf capacity and max depth match NEST's defaults.
const (
	DefaultLeafCapacity = 100
	DefaultMaxDepth     = 10
)

// ntreePoint is one (position, payload) pair held in a leaf.
type ntreePoint struct {
	pos     Position
	payload int
}

// ntreeNode is either a leaf (holding points) or an internal node (holding
// 2^D children, one per orthant of its region).
type ntreeNode struct {
	region   BoundingBox
	depth    int
	items    []ntreePoint
	children []*ntreeNode // nil when this node is a leaf
}

func (n *ntreeNode) isLeaf() bool { return n.children == nil }

// Ntree is a recursive subdivision of D-space into 2^D children per level.
// It is generic over payload in the sense that the
// payload is an opaque int (typically a local node index); callers map it
// back to whatever they need.
type Ntree struct {
	root         *ntreeNode
	leafCapacity int
	maxDepth     int
	dim          int

	// debugID is an opaque, human-meaningless handle for distinguishing
	// one tree instance from another in logs when a layer rebuilds its
	// cached tree (e.g. after InvalidateNtree) — never used in any
	// geometry decision.
	debugID uuid.UUID
}

// NewNtree creates an N-tree over the given region with the given leaf
// capacity and max depth (<=0 selects the defaults).
func NewNtree(region BoundingBox, leafCapacity, maxDepth int) *Ntree {
	if leafCapacity <= 0 {
		leafCapacity = DefaultLeafCapacity
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Ntree{
		root:         &ntreeNode{region: region},
		leafCapacity: leafCapacity,
		maxDepth:     maxDepth,
		dim:          region.Min.Dim,
		debugID:      uuid.New(),
	}
}

// DebugID returns this tree instance's opaque debugging handle, stable for
// the tree's lifetime and distinct across rebuilds.
func (t *Ntree) DebugID() string { return t.debugID.String() }

// Insert adds (pos, payload) to the tree. pos must lie inside the tree's
// region; with periodicity, callers fold the
// position into the canonical region first (see Layer.Fold) before
// calling Insert.
func (t *Ntree) Insert(pos Position, payload int) error {
	if !t.root.region.Contains(pos) {
		return kernelerr.NewKernelException("ntree.insert", "position lies outside the tree's region")
	}
	t.insert(t.root, pos, payload)
	return nil
}

func (t *Ntree) insert(n *ntreeNode, pos Position, payload int) {
	if n.isLeaf() {
		n.items = append(n.items, ntreePoint{pos: pos, payload: payload})
		if len(n.items) > t.leafCapacity && n.depth < t.maxDepth {
			t.split(n)
		}
		return
	}
	child := t.childFor(n, pos)
	t.insert(child, pos, payload)
}

// childFor returns the child region containing pos, splitting the parent
// region at its center along every axis (2^D children per level).
func (t *Ntree) childFor(n *ntreeNode, pos Position) *ntreeNode {
	center := n.region.Center()
	idx := 0
	for axis := 0; axis < t.dim; axis++ {
		if pos.Coord(axis) >= center.Coord(axis) {
			idx |= 1 << uint(axis)
		}
	}
	return n.children[idx]
}

// split converts a leaf into an internal node with 2^D children and
// redistributes its contents.
func (t *Ntree) split(n *ntreeNode) {
	nChildren := 1 << uint(t.dim)
	n.children = make([]*ntreeNode, nChildren)
	center := n.region.Center()
	for idx := 0; idx < nChildren; idx++ {
		min, max := n.region.Min, n.region.Max
		for axis := 0; axis < t.dim; axis++ {
			if idx&(1<<uint(axis)) != 0 {
				min = min.WithCoord(axis, center.Coord(axis))
			} else {
				max = max.WithCoord(axis, center.Coord(axis))
			}
		}
		n.children[idx] = &ntreeNode{region: BoundingBox{Min: min, Max: max}, depth: n.depth + 1}
	}
	items := n.items
	n.items = nil
	for _, it := range items {
		child := t.childFor(n, it.pos)
		t.insert(child, it.pos, it.payload)
	}
}

// Item is one (position, payload) pair yielded by an iterator.
type Item struct {
	Pos     Position
	Payload int
}

// All returns every (position, payload) pair in the tree, in traversal
// order. Used for the full, non-masked traversal.
func (t *Ntree) All() []Item {
	var out []Item
	var walk func(n *ntreeNode)
	walk = func(n *ntreeNode) {
		if n.isLeaf() {
			for _, it := range n.items {
				out = append(out, Item{Pos: it.pos, Payload: it.payload})
			}
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return out
}

// frame is one entry of the masked iterator's explicit traversal stack.
// allIn, once set true on a frame, is inherited by every descendant frame
// pushed from it — this is how the "AllIn(top, ...)" state of the design
// note is represented without a separate top-of-subtree pointer: the
// frame that first became all-in simply never clears the flag again,
// and sibling subtrees outside it start with allIn=false.
type frame struct {
	node  *ntreeNode
	allIn bool
}

// MaskedIterator walks leaves of an Ntree, yielding only points inside
// mask. Its state machine has two modes: open (test every point) and
// all-in (the current subtree's bounding box is fully inside the mask,
// so every descendant leaf qualifies without a per-point test).
type MaskedIterator struct {
	mask      Mask
	stack     []frame
	leafItems []ntreePoint
	leafIdx   int
	leafAllIn bool
	current   Item
	done      bool
}

// NewMaskedIterator builds an iterator over tree yielding points inside
// mask. mask must already be anchored/translated as the caller intends
// (see AnchorAt); the iterator applies no translation of its own.
func NewMaskedIterator(t *Ntree, mask Mask) *MaskedIterator {
	it := &MaskedIterator{mask: mask, stack: []frame{{node: t.root, allIn: false}}}
	it.advance()
	return it
}

func (it *MaskedIterator) advance() {
	for len(it.stack) > 0 {
		top := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		allIn := top.allIn
		if !allIn {
			if it.mask.OutsideBox(top.node.region) {
				continue // subtree entirely outside the mask: skip
			}
			if it.mask.InsideBox(top.node.region) {
				allIn = true // entering an all-in-top subtree
			}
		}

		if top.node.isLeaf() {
			if len(top.node.items) == 0 {
				continue
			}
			it.leafItems = top.node.items
			it.leafIdx = 0
			it.leafAllIn = allIn
			return
		}
		for i := len(top.node.children) - 1; i >= 0; i-- {
			it.stack = append(it.stack, frame{node: top.node.children[i], allIn: allIn})
		}
	}
	it.done = true
}

// Next advances the iterator and reports whether a new item is available.
func (it *MaskedIterator) Next() bool {
	for {
		for it.leafIdx < len(it.leafItems) {
			p := it.leafItems[it.leafIdx]
			it.leafIdx++
			if it.leafAllIn || it.mask.Inside(p.pos) {
				it.current = Item{Pos: p.pos, Payload: p.payload}
				return true
			}
		}
		if it.done {
			return false
		}
		it.advance()
		if it.done {
			return false
		}
	}
}

// Item returns the item most recently yielded by Next.
func (it *MaskedIterator) Item() Item { return it.current }

// PeriodicMaskedIterate enumerates every image anchor of mask that
// intersects tree's region under the given periodicity/extent, and yields
// the union of points matched by any image, deduplicated by payload.
// There are 1-4 such anchors in 2D, 1-8 in 3D. The mask's own anchor
// offset is already baked into mask via AnchorAt before calling, so the
// offsets here are *additional* image shifts.
func PeriodicMaskedIterate(t *Ntree, mask Mask, extent Extent, periodic Periodic, visit func(Item)) {
	offsets := imageOffsets(extent, periodic, t.dim)
	seen := make(map[int]bool)
	for _, off := range offsets {
		shifted := mask
		if off.X != 0 || off.Y != 0 || off.Z != 0 {
			shifted = Anchored{Inner: mask, Offset: off}
		}
		if shifted.OutsideBox(t.root.region) {
			continue
		}
		it := NewMaskedIterator(t, shifted)
		for it.Next() {
			item := it.Item()
			if !seen[item.Payload] {
				seen[item.Payload] = true
				visit(item)
			}
		}
	}
}

func imageOffsets(extent Extent, periodic Periodic, dim int) []Position {
	axisOffsets := func(on bool, e float64) []float64 {
		if !on || e <= 0 {
			return []float64{0}
		}
		return []float64{-e, 0, e}
	}
	xs := axisOffsets(periodic.X, extent.X)
	ys := axisOffsets(periodic.Y, extent.Y)
	zs := []float64{0}
	if dim == 3 {
		zs = axisOffsets(periodic.Z, extent.Z)
	}
	var out []Position
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				out = append(out, Position{Dim: dim, X: x, Y: y, Z: z})
			}
		}
	}
	return out
}
