// Package dump writes the plain-text node-position and connection dumps
// defined in spec.md §6: one line per local node or local outgoing
// connection, space-separated, no trailing space and no header. This is
// the only file format in scope; everything else (recording back-ends,
// richer serialization) is an explicit non-goal.
//
// Grounded on the teacher's habit (e.g. extracellular/discovery.go) of
// plain fmt.Fprintf-based text output rather than a serialization
// library — the dump format here is deliberately inspectable and
// diffable, the same property NEST's own dump_nodes/dump_connections
// targets.
package dump

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/SynapticNetworks/gridspike/spatial"
)

// Node is one entry for WriteNodes: a node identity plus its position.
type Node struct {
	ID       int
	Position spatial.Position
}

// WriteNodes writes one line per entry in nodes, in ascending ID order:
// "node_id x y" for 2D positions, "node_id x y z" for 3D. nodes need not
// arrive pre-sorted; the caller's local rank subset is what the spec
// requires, which WriteNodes does not itself compute.
func WriteNodes(w io.Writer, nodes []Node) error {
	sorted := make([]Node, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	bw := bufio.NewWriter(w)
	for _, n := range sorted {
		p := n.Position
		var err error
		if p.Dim == 3 {
			_, err = fmt.Fprintf(bw, "%d %g %g %g\n", n.ID, p.X, p.Y, p.Z)
		} else {
			_, err = fmt.Fprintf(bw, "%d %g %g\n", n.ID, p.X, p.Y)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Connection is one entry for WriteConnections: a local outgoing
// connection plus the displacement under the layer's periodicity, which
// the caller computes (dump itself has no layer reference).
type Connection struct {
	Source, Target int
	Weight, Delay  float64
	Displacement   spatial.Position
}

// WriteConnections writes one line per entry: "source target weight delay
// dx dy" (2D) or "source target weight delay dx dy dz" (3D), in the order
// given — callers that need a deterministic dump should sort conns
// themselves (e.g. by Source, then Target) before calling.
func WriteConnections(w io.Writer, conns []Connection) error {
	bw := bufio.NewWriter(w)
	for _, c := range conns {
		d := c.Displacement
		var err error
		if d.Dim == 3 {
			_, err = fmt.Fprintf(bw, "%d %d %g %g %g %g %g\n",
				c.Source, c.Target, c.Weight, c.Delay, d.X, d.Y, d.Z)
		} else {
			_, err = fmt.Fprintf(bw, "%d %d %g %g %g %g\n",
				c.Source, c.Target, c.Weight, c.Delay, d.X, d.Y)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
