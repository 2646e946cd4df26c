package route

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// EdgeSet is a set of canonical grid edges
type EdgeSet map[grid.Edge]struct{}

// Has reports whether e is in the set
func (s EdgeSet) Has(e grid.Edge) bool {
	_, ok := s[e]
	return ok
}

// AddPath inserts every unit edge of a grid polyline
func (s EdgeSet) AddPath(path []grid.Point) {
	for _, e := range grid.Edges(path) {
		s[e] = struct{}{}
	}
}

// Occupancy is the edge state seen by one planning call
type Occupancy struct {
	Occupied     EdgeSet // Edges of foreign-net wires, penalized
	SameNet      EdgeSet // Edges of the request's own net, free
	ForeignEnds  CellSet // Endpoints of foreign-net wires
	SameNetCells CellSet // Every cell covered by the request's net
}

// BuildOccupancy splits the wires into the request's net and everything
// else. Wires listed in replacing are ignored entirely.
func BuildOccupancy(g grid.Grid, wires []schematic.Wire, sameNet, replacing map[string]bool) Occupancy {
	occ := Occupancy{
		Occupied:     EdgeSet{},
		SameNet:      EdgeSet{},
		ForeignEnds:  CellSet{},
		SameNetCells: CellSet{},
	}
	for _, w := range wires {
		if replacing[w.ID] || len(w.Points) < 2 {
			continue
		}
		path := g.ToGridPath(w.Points)
		if sameNet[w.ID] {
			occ.SameNet.AddPath(path)
			occ.SameNetCells.Add(grid.Cells(path)...)
			continue
		}
		occ.Occupied.AddPath(path)
		occ.ForeignEnds.Add(path[0], path[len(path)-1])
	}
	return occ
}
