package schematic

// NormalizeRotation folds any multiple of 90 degrees into 0, 90, 180 or 270.
// Other angles are snapped down to the previous quarter turn, so -45 becomes
// 270.
func NormalizeRotation(deg int) int {
	q := deg / 90
	if deg%90 != 0 && deg < 0 {
		q--
	}
	r := q % 4
	if r < 0 {
		r += 4
	}
	return r * 90
}

// TransformOffset maps a symbol-space offset through the component's
// mirror flag and rotation. Mirroring flips X before rotating. Rotation
// uses exact quarter-turn tables so grid-aligned inputs stay aligned.
func TransformOffset(p Position, rotation int, mirror bool) Position {
	if mirror {
		p.X = -p.X
	}
	switch NormalizeRotation(rotation) {
	case 90:
		return Position{X: -p.Y, Y: p.X}
	case 180:
		return Position{X: -p.X, Y: -p.Y}
	case 270:
		return Position{X: p.Y, Y: -p.X}
	default:
		return p
	}
}

// Place maps a symbol-space point to world space for the component
func (c Component) Place(p Position) Position {
	return c.Position.Add(TransformOffset(p, c.Rotation, c.Mirror))
}

// ResolvePins derives the world-space pins of a component
func ResolvePins(c Component, def *SymbolDef) []Pin {
	if def == nil {
		return nil
	}
	pins := make([]Pin, 0, len(def.Pins))
	for _, p := range def.Pins {
		pins = append(pins, Pin{
			ComponentID: c.ID,
			Number:      p.Number,
			Base:        c.Place(p.Base),
			Tip:         c.Place(p.Tip),
		})
	}
	return pins
}

// BodyBox returns the world-space body box of a component
func BodyBox(c Component, def *SymbolDef) BoundingBox {
	bb := NewBoundingBox()
	if def == nil || def.Body.IsEmpty() {
		return bb
	}
	bb.Expand(c.Place(def.Body.Min))
	bb.Expand(c.Place(def.Body.Max))
	return bb
}
