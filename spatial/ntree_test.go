package spatial

import (
	"sort"
	"testing"
)

func box2D(x0, y0, x1, y1 float64) BoundingBox {
	return BoundingBox{Min: NewPosition2D(x0, y0), Max: NewPosition2D(x1, y1)}
}

func TestNtreeInsertAndAll(t *testing.T) {
	tree := NewNtree(box2D(0, 0, 10, 10), 2, 4)
	pts := []Position{
		NewPosition2D(1, 1),
		NewPosition2D(9, 9),
		NewPosition2D(1, 9),
		NewPosition2D(9, 1),
		NewPosition2D(5, 5),
	}
	for i, p := range pts {
		if err := tree.Insert(p, i); err != nil {
			t.Fatalf("Insert(%v): %v", p, err)
		}
	}

	items := tree.All()
	if len(items) != len(pts) {
		t.Fatalf("All() returned %d items, want %d", len(items), len(pts))
	}
	seen := make(map[int]bool)
	for _, it := range items {
		seen[it.Payload] = true
	}
	for i := range pts {
		if !seen[i] {
			t.Fatalf("payload %d missing from All()", i)
		}
	}
}

func TestNtreeInsertOutsideRegionFails(t *testing.T) {
	tree := NewNtree(box2D(0, 0, 10, 10), 2, 4)
	if err := tree.Insert(NewPosition2D(100, 100), 0); err == nil {
		t.Fatalf("expected error inserting outside tree region")
	}
}

func TestNtreeSplitsBeyondLeafCapacity(t *testing.T) {
	tree := NewNtree(box2D(0, 0, 10, 10), 1, 4)
	for i := 0; i < 8; i++ {
		p := NewPosition2D(float64(i)+0.5, float64(i)+0.5)
		if err := tree.Insert(p, i); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if tree.root.isLeaf() {
		t.Fatalf("expected root to have split after exceeding leaf capacity")
	}
	if len(tree.All()) != 8 {
		t.Fatalf("All() after split returned %d items, want 8", len(tree.All()))
	}
}

func TestMaskedIteratorYieldsOnlyInsidePoints(t *testing.T) {
	tree := NewNtree(box2D(0, 0, 10, 10), 2, 4)
	inside := []Position{NewPosition2D(1, 1), NewPosition2D(2, 2)}
	outside := []Position{NewPosition2D(8, 8), NewPosition2D(9, 9)}
	for i, p := range inside {
		tree.Insert(p, i)
	}
	for i, p := range outside {
		tree.Insert(p, 100+i)
	}

	mask, err := NewBoxMask(NewPosition2D(0, 0), NewPosition2D(3, 3), 0, 0)
	if err != nil {
		t.Fatalf("NewBoxMask: %v", err)
	}

	it := NewMaskedIterator(tree, mask)
	var got []int
	for it.Next() {
		got = append(got, it.Item().Payload)
	}
	sort.Ints(got)
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("masked iteration got payloads %v, want [0 1]", got)
	}
}

func TestMaskedIteratorAllInFastPath(t *testing.T) {
	tree := NewNtree(box2D(0, 0, 10, 10), 100, 4)
	for i := 0; i < 5; i++ {
		tree.Insert(NewPosition2D(float64(i), float64(i)), i)
	}
	mask := AllMask{Dim: 2}
	it := NewMaskedIterator(tree, mask)
	count := 0
	for it.Next() {
		count++
	}
	if count != 5 {
		t.Fatalf("AllMask iteration yielded %d items, want 5", count)
	}
}

func TestPeriodicMaskedIterateDeduplicatesAcrossImages(t *testing.T) {
	tree := NewNtree(box2D(0, 0, 10, 10), 10, 4)
	// Near the wrap boundary: not within radius 3 of the origin directly,
	// but within radius 3 of the origin's periodic image at x=10.
	tree.Insert(NewPosition2D(9.5, 0), 0)

	mask, _ := NewBallMask(NewPosition2D(0, 0), 3)
	var visited []int
	PeriodicMaskedIterate(tree, mask, Extent{X: 10, Y: 10}, Periodic{X: true}, func(it Item) {
		visited = append(visited, it.Payload)
	})
	if len(visited) != 1 || visited[0] != 0 {
		t.Fatalf("visited = %v, want exactly [0] (matched via the wrapped image)", visited)
	}
}

func TestNtreeDebugIDStableAndDistinct(t *testing.T) {
	a := NewNtree(box2D(0, 0, 10, 10), 2, 4)
	b := NewNtree(box2D(0, 0, 10, 10), 2, 4)

	if a.DebugID() == "" {
		t.Fatalf("expected a non-empty debug ID")
	}
	if a.DebugID() != a.DebugID() {
		t.Fatalf("expected DebugID to be stable across calls")
	}
	if a.DebugID() == b.DebugID() {
		t.Fatalf("expected distinct trees to have distinct debug IDs")
	}
}
