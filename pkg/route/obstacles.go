package route

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// CellSet is a set of grid cells
type CellSet map[grid.Point]struct{}

// Add inserts cells into the set
func (s CellSet) Add(pts ...grid.Point) {
	for _, p := range pts {
		s[p] = struct{}{}
	}
}

// Has reports whether p is in the set
func (s CellSet) Has(p grid.Point) bool {
	_, ok := s[p]
	return ok
}

// PartPin is a component pin on the routing grid
type PartPin struct {
	Number string
	Base   grid.Point
	Tip    grid.Point
	Stub   []grid.Point // Cells from base to tip inclusive
}

// Part is a placed component reduced to what the router needs
type Part struct {
	ID      string
	Body    grid.Box
	HasBody bool
	Pins    []PartPin
}

// NewPart snaps a resolved component onto the grid. A nil definition
// yields a part with no body and no pins.
func NewPart(g grid.Grid, c schematic.Component, def *schematic.SymbolDef) Part {
	p := Part{ID: c.ID}
	if def == nil {
		return p
	}
	body := schematic.BodyBox(c, def)
	if !body.IsEmpty() {
		p.Body = grid.BoxOf(g.ToGrid(body.Min), g.ToGrid(body.Max))
		p.HasBody = true
	}
	for _, pin := range schematic.ResolvePins(c, def) {
		base, tip := g.ToGrid(pin.Base), g.ToGrid(pin.Tip)
		p.Pins = append(p.Pins, PartPin{
			Number: pin.Number,
			Base:   base,
			Tip:    tip,
			Stub:   grid.Segment(base, tip),
		})
	}
	return p
}

// Cells returns every cell the part occupies: its body and pin stubs
func (p Part) Cells() []grid.Point {
	var out []grid.Point
	if p.HasBody {
		for x := p.Body.Min.X; x <= p.Body.Max.X; x++ {
			for y := p.Body.Min.Y; y <= p.Body.Max.Y; y++ {
				out = append(out, grid.Point{X: x, Y: y})
			}
		}
	}
	for _, pin := range p.Pins {
		out = append(out, pin.Stub...)
	}
	return out
}

// Tips returns the contact cells of the part's pins
func (p Part) Tips() []grid.Point {
	out := make([]grid.Point, len(p.Pins))
	for i, pin := range p.Pins {
		out[i] = pin.Tip
	}
	return out
}

// Obstacle is one component body on the grid
type Obstacle struct {
	ComponentID string
	Box         grid.Box
}

// Obstacles returns one box per component body
func Obstacles(parts []Part) []Obstacle {
	out := make([]Obstacle, 0, len(parts))
	for _, p := range parts {
		if !p.HasBody {
			continue
		}
		out = append(out, Obstacle{ComponentID: p.ID, Box: p.Body})
	}
	return out
}

// AllowedCells returns the pin-stub corridors that are exempt from their
// own component's obstacle box.
func AllowedCells(parts []Part) CellSet {
	allowed := CellSet{}
	for _, p := range parts {
		for _, pin := range p.Pins {
			allowed.Add(pin.Stub...)
		}
	}
	return allowed
}

// BlockedCells returns the stubs of pins that belong to another net than
// the request. A pin counts as same-net when its tip is in sameNet. Only
// pins inside window are considered.
func BlockedCells(parts []Part, window grid.Box, sameNet CellSet) CellSet {
	blocked := CellSet{}
	for _, p := range parts {
		for _, pin := range p.Pins {
			if !window.Contains(pin.Tip) || sameNet.Has(pin.Tip) {
				continue
			}
			blocked.Add(pin.Stub...)
		}
	}
	return blocked
}

// SearchWindow is the region the router explores for a request: the
// endpoints' box grown by margin, widened to cover every obstacle it
// touches plus one free cell around it.
func SearchWindow(from, to grid.Point, obstacles []Obstacle, margin int) grid.Box {
	w := grid.BoxOf(from, to).Grow(margin)
	for changed := true; changed; {
		changed = false
		for _, o := range obstacles {
			if !w.Intersects(o.Box) {
				continue
			}
			u := w.Union(o.Box.Grow(1))
			if u != w {
				w = u
				changed = true
			}
		}
	}
	return w
}
