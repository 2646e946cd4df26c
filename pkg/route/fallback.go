package route

import "github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"

// Fallback returns a deterministic direct path used when routing fails: a
// single segment when the endpoints are aligned, otherwise one bend. The
// horizontal-first corner is used unless only the vertical-first one is
// passable.
func Fallback(from, to grid.Point, passable func(grid.Point) bool) []grid.Point {
	if from == to || from.X == to.X || from.Y == to.Y {
		return []grid.Point{from, to}
	}
	hFirst := grid.Point{X: to.X, Y: from.Y}
	vFirst := grid.Point{X: from.X, Y: to.Y}
	if passable != nil && !pathClear([]grid.Point{from, hFirst, to}, passable) &&
		pathClear([]grid.Point{from, vFirst, to}, passable) {
		return []grid.Point{from, vFirst, to}
	}
	return []grid.Point{from, hFirst, to}
}

// Violations returns the interior cells of path that the request's rules
// would not let the router enter.
func Violations(path []grid.Point, passable func(grid.Point) bool) []grid.Point {
	cells := grid.Cells(path)
	var out []grid.Point
	for i, c := range cells {
		if i == 0 || i == len(cells)-1 {
			continue
		}
		if !passable(c) {
			out = append(out, c)
		}
	}
	return out
}

func pathClear(path []grid.Point, passable func(grid.Point) bool) bool {
	return len(Violations(path, passable)) == 0
}
