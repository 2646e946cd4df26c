package grid

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

func TestGridConversion(t *testing.T) {
	g := New(1.27)
	p := Point{X: 7, Y: -3}
	w := g.ToWorld(p)
	if back := g.ToGrid(w); back != p {
		t.Errorf("ToGrid(ToWorld(%v)) = %v", p, back)
	}
	if !g.IsAligned(w) {
		t.Errorf("%v should be grid aligned", w)
	}

	off := schematic.Position{X: 1.0, Y: 2.0}
	if g.IsAligned(off) {
		t.Errorf("%v should not be aligned on a 1.27 grid", off)
	}
	snapped := g.Snap(off)
	if !snapped.Equal(schematic.Position{X: 1.27, Y: 2.54}) {
		t.Errorf("Snap(%v) = %v", off, snapped)
	}
}

func TestNewDefaultsSpacing(t *testing.T) {
	if g := New(0); g.Spacing != DefaultSpacing {
		t.Errorf("expected default spacing, got %v", g.Spacing)
	}
}

func TestNewEdgeCanonical(t *testing.T) {
	a, b := Point{X: 1, Y: 0}, Point{X: 0, Y: 0}
	if NewEdge(a, b) != NewEdge(b, a) {
		t.Error("edges should be direction independent")
	}
}

func TestCellsAndEdges(t *testing.T) {
	path := []Point{{0, 0}, {3, 0}, {3, 2}}
	cells := Cells(path)
	if len(cells) != 6 {
		t.Fatalf("expected 6 cells, got %d: %v", len(cells), cells)
	}
	if cells[3] != (Point{3, 0}) || cells[5] != (Point{3, 2}) {
		t.Errorf("unexpected cells %v", cells)
	}
	edges := Edges(path)
	if len(edges) != 5 {
		t.Errorf("expected 5 edges, got %d", len(edges))
	}
}

func TestSimplifyAndBends(t *testing.T) {
	tests := []struct {
		name  string
		path  []Point
		want  int
		bends int
	}{
		{"straight", []Point{{0, 0}, {1, 0}, {2, 0}, {5, 0}}, 2, 0},
		{"L", []Point{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 4}}, 3, 1},
		{"duplicates", []Point{{0, 0}, {0, 0}, {0, 3}}, 2, 0},
		{"Z", []Point{{0, 0}, {2, 0}, {2, 2}, {4, 2}}, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.path)
			if len(got) != tt.want {
				t.Errorf("Simplify = %v, want %d points", got, tt.want)
			}
			if b := Bends(tt.path); b != tt.bends {
				t.Errorf("Bends = %d, want %d", b, tt.bends)
			}
		})
	}
}

func TestBoxOps(t *testing.T) {
	b := BoxOf(Point{2, 3}, Point{-1, 5})
	if b.Min != (Point{-1, 3}) || b.Max != (Point{2, 5}) {
		t.Errorf("BoxOf = %+v", b)
	}
	if !b.Contains(Point{0, 4}) || b.Contains(Point{3, 4}) {
		t.Error("Contains mismatch")
	}
	g := b.Grow(1)
	if g.Min != (Point{-2, 2}) || g.Max != (Point{3, 6}) {
		t.Errorf("Grow = %+v", g)
	}
	if !b.Intersects(Box{Min: Point{2, 5}, Max: Point{4, 6}}) {
		t.Error("boxes sharing a corner cell intersect")
	}
}
