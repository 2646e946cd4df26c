package grid

// Edge is a unit step between two neighbouring grid points. Edges are
// stored in canonical order so that A->B and B->A compare equal.
type Edge struct {
	A, B Point
}

// NewEdge returns the canonical edge between a and b
func NewEdge(a, b Point) Edge {
	if b.Less(a) {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Box is an inclusive rectangle of grid cells
type Box struct {
	Min, Max Point
}

// Contains reports whether p lies in the box, edges included
func (b Box) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Grow returns the box expanded by n cells on every side
func (b Box) Grow(n int) Box {
	return Box{
		Min: Point{X: b.Min.X - n, Y: b.Min.Y - n},
		Max: Point{X: b.Max.X + n, Y: b.Max.Y + n},
	}
}

// Union returns the smallest box containing both boxes
func (b Box) Union(o Box) Box {
	return Box{
		Min: Point{X: min(b.Min.X, o.Min.X), Y: min(b.Min.Y, o.Min.Y)},
		Max: Point{X: max(b.Max.X, o.Max.X), Y: max(b.Max.Y, o.Max.Y)},
	}
}

// Intersects reports whether two boxes share at least one cell
func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X && b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

// BoxOf returns the bounding box of the given points
func BoxOf(pts ...Point) Box {
	b := Box{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b = b.Union(Box{Min: p, Max: p})
	}
	return b
}

// Segment returns every grid point on the axis-aligned segment from a to b,
// both ends included. Diagonal input yields only the two endpoints.
func Segment(a, b Point) []Point {
	if a.X != b.X && a.Y != b.Y {
		return []Point{a, b}
	}
	n := Manhattan(a, b)
	out := make([]Point, 0, n+1)
	step := Point{X: sign(b.X - a.X), Y: sign(b.Y - a.Y)}
	p := a
	for i := 0; i <= n; i++ {
		out = append(out, p)
		p = p.Add(step)
	}
	return out
}

// Cells returns the grid points covered by a polyline, in walk order.
// Shared corner points appear once.
func Cells(path []Point) []Point {
	if len(path) == 0 {
		return nil
	}
	out := []Point{path[0]}
	for i := 1; i < len(path); i++ {
		seg := Segment(path[i-1], path[i])
		out = append(out, seg[1:]...)
	}
	return out
}

// Edges returns the unit edges covered by a polyline
func Edges(path []Point) []Edge {
	cells := Cells(path)
	out := make([]Edge, 0, len(cells))
	for i := 1; i < len(cells); i++ {
		if Manhattan(cells[i-1], cells[i]) != 1 {
			continue
		}
		out = append(out, NewEdge(cells[i-1], cells[i]))
	}
	return out
}

// Simplify removes duplicate and collinear interior points
func Simplify(path []Point) []Point {
	if len(path) <= 2 {
		return append([]Point(nil), path...)
	}
	out := []Point{path[0]}
	for i := 1; i < len(path); i++ {
		p := path[i]
		if p == out[len(out)-1] {
			continue
		}
		if len(out) >= 2 && collinear(out[len(out)-2], out[len(out)-1], p) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	if len(out) == 1 {
		out = append(out, out[0])
	}
	return out
}

// Bends counts direction changes along a polyline
func Bends(path []Point) int {
	s := Simplify(path)
	if len(s) < 3 {
		return 0
	}
	return len(s) - 2
}

func collinear(a, b, c Point) bool {
	return (a.X == b.X && b.X == c.X) || (a.Y == b.Y && b.Y == c.Y)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
