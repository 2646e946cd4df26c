package route

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

func wire(id string, pts ...schematic.Position) schematic.Wire {
	return schematic.Wire{ID: id, Points: pts}
}

func pos(x, y float64) schematic.Position {
	return schematic.Position{X: x, Y: y}
}

func TestSameNetWireIDs(t *testing.T) {
	g := grid.New(1)
	wires := []schematic.Wire{
		wire("a", pos(0, 0), pos(5, 0)),
		wire("b", pos(5, 0), pos(5, 5)),           // shares an endpoint with a
		wire("c", pos(2, 0), pos(2, -4)),          // T onto the interior of a
		wire("d", pos(3, -2), pos(3, 2)),          // crosses a without an endpoint on it
		wire("e", pos(3, 2), pos(8, 2)),           // joined to d only
		wire("f", pos(20, 20), pos(25, 20), pos(25, 25)),
	}

	got := SameNetWireIDs(g, []schematic.Position{pos(0, 0)}, wires)
	for _, id := range []string{"a", "b", "c"} {
		if !got[id] {
			t.Errorf("wire %s should be in the net", id)
		}
	}
	for _, id := range []string{"d", "e", "f"} {
		if got[id] {
			t.Errorf("wire %s should not be in the net", id)
		}
	}

	if len(SameNetWireIDs(g, []schematic.Position{pos(100, 100)}, wires)) != 0 {
		t.Error("seed touching no wire should give an empty net")
	}

	both := SameNetWireIDs(g, []schematic.Position{pos(0, 0), pos(25, 22)}, wires)
	if !both["f"] || !both["a"] {
		t.Errorf("seeds in two nets should merge both, got %v", both)
	}
}

func TestNetIDs(t *testing.T) {
	g := grid.New(1)
	wires := []schematic.Wire{
		wire("a", pos(0, 0), pos(5, 0)),
		wire("b", pos(5, 0), pos(5, 5)),
		wire("c", pos(0, 3), pos(4, 3)),
	}
	nets := NetIDs(g, wires)
	if nets["a"] != nets["b"] {
		t.Error("a and b are connected")
	}
	if nets["a"] == nets["c"] {
		t.Error("c is isolated")
	}
}

func TestCellIndex(t *testing.T) {
	ix := NewCellIndex()
	ix.AddPath(1, []grid.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}})
	ix.Add(2, grid.Point{X: 2, Y: 0})
	ix.Add(2, grid.Point{X: 2, Y: 0})
	at := ix.At(grid.Point{X: 2, Y: 0})
	if len(at) != 2 {
		t.Errorf("expected 2 occupants without duplicates, got %v", at)
	}
	if len(ix.At(grid.Point{X: 1, Y: 1})) != 0 {
		t.Error("empty cell should have no occupants")
	}
}
