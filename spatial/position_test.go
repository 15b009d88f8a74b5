package spatial

import (
	"math"
	"testing"
)

func TestDistance3D(t *testing.T) {
	a := NewPosition3D(0, 0, 0)
	b := NewPosition3D(3, 4, 0)
	if d := Distance(a, b); math.Abs(d-5) > 1e-9 {
		t.Fatalf("Distance = %g, want 5", d)
	}
}

func TestCoordAndWithCoord(t *testing.T) {
	p := NewPosition2D(1, 2)
	if p.Coord(0) != 1 || p.Coord(1) != 2 {
		t.Fatalf("Coord mismatch on %+v", p)
	}
	p2 := p.WithCoord(0, 9)
	if p2.X != 9 || p.X != 1 {
		t.Fatalf("WithCoord should not mutate original: got %+v, orig %+v", p2, p)
	}
}

func TestWrap1PeriodicShortestPath(t *testing.T) {
	// On a periodic axis of extent 10, going from 1 to 9 should wrap to -2
	// (shorter than +8).
	d := wrap1(1, 9, 10)
	if math.Abs(d-(-2)) > 1e-9 {
		t.Fatalf("wrap1 = %g, want -2", d)
	}
}

func TestDisplacementNonPeriodicIsPlainSubtraction(t *testing.T) {
	a := NewPosition2D(1, 1)
	b := NewPosition2D(4, 6)
	d := Displacement(a, b, Extent{X: 10, Y: 10}, Periodic{})
	if d.X != 3 || d.Y != 5 {
		t.Fatalf("Displacement = %+v, want (3,5)", d)
	}
}

func TestDisplacementPeriodicWrapsAroundBoundary(t *testing.T) {
	a := NewPosition2D(1, 0)
	b := NewPosition2D(9, 0)
	d := Displacement(a, b, Extent{X: 10, Y: 10}, Periodic{X: true})
	if math.Abs(d.X-(-2)) > 1e-9 {
		t.Fatalf("periodic Displacement.X = %g, want -2", d.X)
	}
}

func TestBoundingBoxContains(t *testing.T) {
	box := BoundingBox{Min: NewPosition2D(0, 0), Max: NewPosition2D(10, 10)}
	if !box.Contains(NewPosition2D(5, 5)) {
		t.Fatalf("expected (5,5) inside box")
	}
	if box.Contains(NewPosition2D(11, 5)) {
		t.Fatalf("expected (11,5) outside box")
	}
}

func TestBoundingBoxDisjoint(t *testing.T) {
	a := BoundingBox{Min: NewPosition2D(0, 0), Max: NewPosition2D(5, 5)}
	b := BoundingBox{Min: NewPosition2D(10, 10), Max: NewPosition2D(15, 15)}
	if !a.DisjointBox(b) {
		t.Fatalf("expected disjoint boxes")
	}
	c := BoundingBox{Min: NewPosition2D(3, 3), Max: NewPosition2D(8, 8)}
	if a.DisjointBox(c) {
		t.Fatalf("expected overlapping boxes to not be disjoint")
	}
}

func TestBoundingBoxCenter(t *testing.T) {
	box := BoundingBox{Min: NewPosition2D(0, 0), Max: NewPosition2D(10, 4)}
	center := box.Center()
	if center.X != 5 || center.Y != 2 {
		t.Fatalf("Center = %+v, want (5,2)", center)
	}
}
