package schematic

import "math"

// coordEpsilon is the tolerance used when comparing world coordinates.
const coordEpsilon = 1e-6

// Position represents a 2D coordinate in world units (millimeters)
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Add returns the sum of two positions
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns the difference of two positions
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Equal reports whether two positions coincide within coordEpsilon
func (p Position) Equal(o Position) bool {
	return math.Abs(p.X-o.X) < coordEpsilon && math.Abs(p.Y-o.Y) < coordEpsilon
}

// BoundingBox represents a rectangular boundary
type BoundingBox struct {
	Min Position `yaml:"min"` // Minimum (top-left) corner
	Max Position `yaml:"max"` // Maximum (bottom-right) corner
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Position{X: math.Inf(1), Y: math.Inf(1)},
		Max: Position{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// IsEmpty checks if the bounding box is empty
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand expands the bounding box to include a position
func (bb *BoundingBox) Expand(pos Position) {
	bb.Min.X = math.Min(bb.Min.X, pos.X)
	bb.Min.Y = math.Min(bb.Min.Y, pos.Y)
	bb.Max.X = math.Max(bb.Max.X, pos.X)
	bb.Max.Y = math.Max(bb.Max.Y, pos.Y)
}

// Contains checks if a position is within the bounding box, edges included
func (bb BoundingBox) Contains(pos Position) bool {
	return pos.X >= bb.Min.X-coordEpsilon && pos.X <= bb.Max.X+coordEpsilon &&
		pos.Y >= bb.Min.Y-coordEpsilon && pos.Y <= bb.Max.Y+coordEpsilon
}

// Overlaps reports whether two boxes share a region of positive area
func (bb BoundingBox) Overlaps(other BoundingBox) bool {
	return bb.Min.X < other.Max.X-coordEpsilon && bb.Max.X > other.Min.X+coordEpsilon &&
		bb.Min.Y < other.Max.Y-coordEpsilon && bb.Max.Y > other.Min.Y+coordEpsilon
}

// Translate returns the box shifted by d
func (bb BoundingBox) Translate(d Position) BoundingBox {
	return BoundingBox{Min: bb.Min.Add(d), Max: bb.Max.Add(d)}
}

// Width returns the width of the bounding box
func (bb BoundingBox) Width() float64 {
	return bb.Max.X - bb.Min.X
}

// Height returns the height of the bounding box
func (bb BoundingBox) Height() float64 {
	return bb.Max.Y - bb.Min.Y
}
