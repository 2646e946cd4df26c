// Package grid converts between world coordinates and the integer routing
// grid. It holds no state besides the grid spacing.
package grid

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// DefaultSpacing is the 50 mil schematic grid in millimeters
const DefaultSpacing = 1.27

// Point is a grid cell coordinate
type Point struct {
	X, Y int
}

// Add returns the sum of two grid points
func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

// Less orders points by X then Y
func (p Point) Less(o Point) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	return p.Y < o.Y
}

// Manhattan returns the taxicab distance between two points
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Grid converts world positions to grid points and back
type Grid struct {
	Spacing float64
}

// New returns a grid with the given spacing, falling back to DefaultSpacing
// for non-positive values.
func New(spacing float64) Grid {
	if spacing <= 0 {
		spacing = DefaultSpacing
	}
	return Grid{Spacing: spacing}
}

// ToGrid returns the nearest grid point to p
func (g Grid) ToGrid(p schematic.Position) Point {
	return Point{
		X: int(math.Round(p.X / g.Spacing)),
		Y: int(math.Round(p.Y / g.Spacing)),
	}
}

// ToWorld returns the world position of a grid point
func (g Grid) ToWorld(p Point) schematic.Position {
	return schematic.Position{X: float64(p.X) * g.Spacing, Y: float64(p.Y) * g.Spacing}
}

// Snap moves p onto the nearest grid point
func (g Grid) Snap(p schematic.Position) schematic.Position {
	return g.ToWorld(g.ToGrid(p))
}

// IsAligned reports whether p already lies on the grid
func (g Grid) IsAligned(p schematic.Position) bool {
	return g.Snap(p).Equal(p)
}

// ToGridPath converts a world polyline to grid points
func (g Grid) ToGridPath(pts []schematic.Position) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = g.ToGrid(p)
	}
	return out
}

// ToWorldPath converts a grid polyline to world points
func (g Grid) ToWorldPath(pts []Point) []schematic.Position {
	out := make([]schematic.Position, len(pts))
	for i, p := range pts {
		out[i] = g.ToWorld(p)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
