package route

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// wireGraph links two wires when an endpoint of one lies anywhere on the
// other. Interior crossings do not connect.
func wireGraph(g grid.Grid, wires []schematic.Wire) (*simple.UndirectedGraph, *CellIndex) {
	ug := simple.NewUndirectedGraph()
	idx := NewCellIndex()
	paths := make([][]grid.Point, len(wires))
	for i, w := range wires {
		ug.AddNode(simple.Node(int64(i)))
		if len(w.Points) == 0 {
			continue
		}
		paths[i] = g.ToGridPath(w.Points)
		idx.AddPath(i, paths[i])
	}
	for i, path := range paths {
		if len(path) == 0 {
			continue
		}
		for _, end := range []grid.Point{path[0], path[len(path)-1]} {
			for _, j := range idx.At(end) {
				if j == i {
					continue
				}
				ug.SetEdge(simple.Edge{F: simple.Node(int64(i)), T: simple.Node(int64(j))})
			}
		}
	}
	return ug, idx
}

// SameNetWireIDs returns the ids of wires electrically joined to any seed
// point. Net identity is recomputed on every call and never stored.
func SameNetWireIDs(g grid.Grid, seeds []schematic.Position, wires []schematic.Wire) map[string]bool {
	result := make(map[string]bool)
	if len(wires) == 0 {
		return result
	}
	ug, idx := wireGraph(g, wires)

	seeded := make(map[int64]bool)
	for _, s := range seeds {
		for _, i := range idx.At(g.ToGrid(s)) {
			seeded[int64(i)] = true
		}
	}
	if len(seeded) == 0 {
		return result
	}

	for _, comp := range topo.ConnectedComponents(ug) {
		hit := false
		for _, n := range comp {
			if seeded[n.ID()] {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		for _, n := range comp {
			result[wires[n.ID()].ID] = true
		}
	}
	return result
}

// NetIDs assigns every wire a net number; wires share a number exactly when
// they are connected. Numbers are only meaningful within one call.
func NetIDs(g grid.Grid, wires []schematic.Wire) map[string]int {
	nets := make(map[string]int, len(wires))
	if len(wires) == 0 {
		return nets
	}
	ug, _ := wireGraph(g, wires)
	for netID, comp := range topo.ConnectedComponents(ug) {
		for _, n := range comp {
			nets[wires[n.ID()].ID] = netID
		}
	}
	return nets
}
