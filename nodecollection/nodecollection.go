// Package nodecollection implements the ordered identity sets §6 exposes as
// the node-collection external interface: contiguous primitive ranges,
// composite unions of ranges, slicing, merge-concatenation, and metadata
// attachment (most importantly, a spatial layer reference).
//
// Grounded on the teacher's extracellular/registry.go ComponentRegistry for
// the "track a population of identities, answer membership and lookup
// questions" shape, generalized from a string-keyed map to the contiguous
// integer ranges NEST node collections actually are: a population of a
// million neurons is never stored as a million map entries.
package nodecollection

import (
	"sort"

	"github.com/SynapticNetworks/gridspike/kernelerr"
)

// Metadata is attached to a Collection and carries information outside the
// plain identity set itself — most importantly the spatial layer a
// collection of positioned nodes belongs to. Implemented as a tagged
// polymorphic reference (an interface) per the teacher's habit of small
// capability interfaces rather than a type-switch over a fixed enum.
type Metadata interface {
	// Status returns a serialized status dictionary; two Metadata values
	// are considered equal when their Status dictionaries are equal.
	Status() map[string]interface{}
}

// MetadataEqual compares two Metadata values by their serialized status,
// per §4's "Collection metadata" design note.
func MetadataEqual(a, b Metadata) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	sa, sb := a.Status(), b.Status()
	if len(sa) != len(sb) {
		return false
	}
	for k, v := range sa {
		if sb[k] != v {
			return false
		}
	}
	return true
}

// primitiveRange is a contiguous, homogeneous run of node identities
// [First, First+Count).
type primitiveRange struct {
	First, Count int
}

// Collection is an ordered set of node identities: primitive (a single
// contiguous run) when it was built that way, composite (several runs,
// possibly from concatenating two collections) otherwise. A Collection
// additionally remembers a step for slicing and carries optional Metadata.
type Collection struct {
	ranges   []primitiveRange
	step     int // 1 for an unsliced collection
	meta     Metadata
	rankOf   func(nodeID int) int // nil: every node is rank-local
	localRnk int
}

// New builds a primitive collection of count identities starting at
// first (inclusive). count == 0 is allowed and yields an empty, still-
// primitive collection.
func New(first, count int) *Collection {
	c := &Collection{step: 1}
	if count > 0 {
		c.ranges = []primitiveRange{{First: first, Count: count}}
	}
	return c
}

// WithMetadata attaches m and returns the receiver for chaining.
func (c *Collection) WithMetadata(m Metadata) *Collection {
	c.meta = m
	return c
}

// Metadata returns the collection's attached metadata, or nil.
func (c *Collection) Metadata() Metadata { return c.meta }

// WithRankFunc attaches the function used to decide, for a given global
// node ID, which rank owns it; localRank is this process's own rank. Used
// by LocalIter.
func (c *Collection) WithRankFunc(rankOf func(nodeID int) int, localRank int) *Collection {
	c.rankOf = rankOf
	c.localRnk = localRank
	return c
}

// IsPrimitive reports whether the collection is a single contiguous,
// unsliced run.
func (c *Collection) IsPrimitive() bool {
	return len(c.ranges) <= 1 && c.step == 1
}

// Size returns the number of identities the collection yields under its
// current step, honoring slicing. An empty collection reports size 0;
// per §8's boundary behavior, its step is reported as 1 regardless of how
// it got to be empty.
func (c *Collection) Size() int {
	total := c.totalUnsliced()
	if total == 0 {
		return 0
	}
	if c.step <= 1 {
		return total
	}
	return (total + c.step - 1) / c.step
}

// Step returns the collection's slice step (>= 1).
func (c *Collection) Step() int {
	if c.step <= 0 {
		return 1
	}
	return c.step
}

func (c *Collection) totalUnsliced() int {
	n := 0
	for _, r := range c.ranges {
		n += r.Count
	}
	return n
}

// At returns the i-th identity (0-indexed, after step is applied).
// Panics with a KernelException-carrying error path is avoided here by
// returning ok=false on out-of-range i, matching Go collection idiom
// rather than NEST's exception-on-bad-index.
func (c *Collection) At(i int) (int, bool) {
	if i < 0 || i >= c.Size() {
		return 0, false
	}
	unsliced := i * c.Step()
	for _, r := range c.ranges {
		if unsliced < r.Count {
			return r.First + unsliced, true
		}
		unsliced -= r.Count
	}
	return 0, false
}

// Slice returns a new collection yielding elements start, start+step,
// start+2*step, ... stop (exclusive), expressed in the receiver's own
// already-sliced index space, composing steps the way Python/NEST slicing
// composes.
func (c *Collection) Slice(start, stop, step int) (*Collection, error) {
	if step <= 0 {
		return nil, kernelerr.NewBadProperty("nodecollection", "step", "slice step must be positive")
	}
	if start < 0 || stop > c.Size() || start > stop {
		return nil, kernelerr.NewBadProperty("nodecollection", "slice", "start/stop out of range")
	}
	out := &Collection{step: 1, meta: c.meta, rankOf: c.rankOf, localRnk: c.localRnk}
	for i := start; i < stop; i += step {
		id, ok := c.At(i)
		if !ok {
			break
		}
		out.appendID(id)
	}
	return out, nil
}

func (c *Collection) appendID(id int) {
	if n := len(c.ranges); n > 0 {
		last := &c.ranges[n-1]
		if last.First+last.Count == id {
			last.Count++
			return
		}
	}
	c.ranges = append(c.ranges, primitiveRange{First: id, Count: 1})
}

// Concat merges the given collections into a new collection whose
// identities are sorted and deduplicated, per §6's "set concatenation
// (with sort+merge)". The result is primitive if the merged identities
// happen to form one contiguous run.
func Concat(collections ...*Collection) *Collection {
	seen := make(map[int]struct{})
	var all []int
	for _, c := range collections {
		for i := 0; i < c.Size(); i++ {
			id, ok := c.At(i)
			if !ok {
				continue
			}
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				all = append(all, id)
			}
		}
	}
	sort.Ints(all)
	out := &Collection{step: 1}
	for _, id := range all {
		out.appendID(id)
	}
	if len(collections) > 0 {
		out.meta = collections[0].meta
		out.rankOf = collections[0].rankOf
		out.localRnk = collections[0].localRnk
	}
	return out
}

// LocalIter calls fn for every identity this rank owns, in ascending
// collection order. With no rank function attached every identity is
// treated as local (single-rank operation).
func (c *Collection) LocalIter(fn func(nodeID int)) {
	for i := 0; i < c.Size(); i++ {
		id, ok := c.At(i)
		if !ok {
			continue
		}
		if c.rankOf != nil && c.rankOf(id) != c.localRnk {
			continue
		}
		fn(id)
	}
}

// Contains reports whether nodeID is a member of the collection,
// ignoring the step (membership, not iteration order).
func (c *Collection) Contains(nodeID int) bool {
	for _, r := range c.ranges {
		if nodeID >= r.First && nodeID < r.First+r.Count {
			return true
		}
	}
	return false
}
