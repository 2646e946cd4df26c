package editor

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/route"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// layout is the component state of a sheet reduced to the grid. It is
// rebuilt for every cascade; components do not change while passes run.
type layout struct {
	parts     []route.Part
	obstacles []route.Obstacle
	allowed   route.CellSet
	tips      route.CellSet
	cells     *route.CellIndex // body and stub cells -> part index
}

func (e *Editor) layout(sheet *schematic.Sheet) *layout {
	lay := &layout{
		tips:  route.CellSet{},
		cells: route.NewCellIndex(),
	}
	for _, c := range sheet.Components {
		def := e.resolve(c.LibID)
		if def == nil {
			continue
		}
		part := route.NewPart(e.grid, c, def)
		lay.cells.Add(len(lay.parts), part.Cells()...)
		lay.tips.Add(part.Tips()...)
		lay.parts = append(lay.parts, part)
	}
	lay.obstacles = route.Obstacles(lay.parts)
	lay.allowed = route.AllowedCells(lay.parts)
	return lay
}

// connectedTo returns the ids of parts with a pin tip on any of pts
func (l *layout) connectedTo(pts ...grid.Point) map[string]bool {
	out := make(map[string]bool)
	for _, p := range pts {
		for _, i := range l.cells.At(p) {
			for _, pin := range l.parts[i].Pins {
				if pin.Tip == p {
					out[l.parts[i].ID] = true
				}
			}
		}
	}
	return out
}

// collision checks candidates against every part not in skip. Two parts
// may only share cells that are pin tips of both.
func (l *layout) collision(skip map[string]bool, candidates []route.Part) error {
	for _, cand := range candidates {
		candTips := route.CellSet{}
		candTips.Add(cand.Tips()...)
		for _, cell := range cand.Cells() {
			for _, i := range l.cells.At(cell) {
				other := l.parts[i]
				if skip[other.ID] {
					continue
				}
				if candTips.Has(cell) && hasTip(other, cell) {
					continue
				}
				return fmt.Errorf("%w: %s overlaps %s", ErrPlacementRejected, cand.ID, other.ID)
			}
		}
	}
	return nil
}

func hasTip(p route.Part, cell grid.Point) bool {
	for _, pin := range p.Pins {
		if pin.Tip == cell {
			return true
		}
	}
	return false
}
