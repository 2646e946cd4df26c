// Package schematic provides the document model of the schematic editor:
// placed components, wires, junctions and labels grouped into sheets.
package schematic

import (
	"fmt"
	"time"
)

// PinDirection is the side of the body a pin leaves from, in symbol space
type PinDirection string

const (
	PinUp    PinDirection = "up"
	PinDown  PinDirection = "down"
	PinLeft  PinDirection = "left"
	PinRight PinDirection = "right"
)

// PinDef is a pin as declared by a library symbol, relative to the symbol origin
type PinDef struct {
	Number    string       // Pin number ("1", "2", "A3")
	Name      string       // Pin name (optional)
	Base      Position     // Attachment point on the body
	Tip       Position     // Electrical contact point
	Direction PinDirection // Side the pin leaves from
}

// SymbolDef is a resolved library definition
type SymbolDef struct {
	LibID string      // Library identifier (e.g., "Device:R")
	Pins  []PinDef    // Pin definitions
	Body  BoundingBox // Body box relative to the symbol origin
}

// Pin finds a pin definition by number
func (d *SymbolDef) Pin(number string) (PinDef, bool) {
	for _, p := range d.Pins {
		if p.Number == number {
			return p, true
		}
	}
	return PinDef{}, false
}

// Component is a placed library instance
type Component struct {
	ID        string   `yaml:"id"`
	LibID     string   `yaml:"lib_id"`
	Reference string   `yaml:"reference,omitempty"`
	Position  Position `yaml:"at"`
	Rotation  int      `yaml:"rotation"` // 0, 90, 180 or 270
	Mirror    bool     `yaml:"mirror,omitempty"`
}

// Pin is a component pin in world coordinates. It is always derived from
// the component placement and never stored.
type Pin struct {
	ComponentID string
	Number      string
	Base        Position
	Tip         Position
}

// Wire is an axis-aligned polyline. Only the first and last points are
// connection points.
type Wire struct {
	ID     string     `yaml:"id"`
	Points []Position `yaml:"pts"`
}

// Start returns the first point of the wire
func (w Wire) Start() Position { return w.Points[0] }

// End returns the last point of the wire
func (w Wire) End() Position { return w.Points[len(w.Points)-1] }

// Junction marks a three-or-more way wire connection
type Junction struct {
	ID       string   `yaml:"id"`
	Position Position `yaml:"at"`
}

// Label names the net at its position
type Label struct {
	ID       string   `yaml:"id"`
	Text     string   `yaml:"text"`
	Position Position `yaml:"at"`
}

// Sheet holds the elements of one schematic page
type Sheet struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name,omitempty"`
	Components []Component `yaml:"components,omitempty"`
	Wires      []Wire      `yaml:"wires,omitempty"`
	Junctions  []Junction  `yaml:"junctions,omitempty"`
	Labels     []Label     `yaml:"labels,omitempty"`
}

// Document is the editable aggregate of sheets
type Document struct {
	Sheets      []*Sheet  `yaml:"sheets"`
	ActiveSheet string    `yaml:"active_sheet"`
	Modified    bool      `yaml:"-"`
	UpdatedAt   time.Time `yaml:"updated_at,omitempty"`
}

// NewDocument creates a document with a single empty sheet
func NewDocument(sheetID string) *Document {
	return &Document{
		Sheets:      []*Sheet{{ID: sheetID, Name: "root"}},
		ActiveSheet: sheetID,
	}
}

// Active returns the sheet being edited. If ActiveSheet is unset the first
// sheet is used.
func (d *Document) Active() (*Sheet, error) {
	if len(d.Sheets) == 0 {
		return nil, fmt.Errorf("schematic: document has no sheets")
	}
	if d.ActiveSheet == "" {
		return d.Sheets[0], nil
	}
	for _, s := range d.Sheets {
		if s.ID == d.ActiveSheet {
			return s, nil
		}
	}
	return nil, fmt.Errorf("schematic: active sheet %q not found", d.ActiveSheet)
}

// Touch records a modification
func (d *Document) Touch() {
	d.Modified = true
	d.UpdatedAt = time.Now()
}

// Component returns a pointer to the component with the given id
func (s *Sheet) Component(id string) *Component {
	for i := range s.Components {
		if s.Components[i].ID == id {
			return &s.Components[i]
		}
	}
	return nil
}

// Wire returns a pointer to the wire with the given id
func (s *Sheet) Wire(id string) *Wire {
	for i := range s.Wires {
		if s.Wires[i].ID == id {
			return &s.Wires[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the sheet
func (s *Sheet) Clone() *Sheet {
	c := &Sheet{
		ID:         s.ID,
		Name:       s.Name,
		Components: append([]Component(nil), s.Components...),
		Junctions:  append([]Junction(nil), s.Junctions...),
		Labels:     append([]Label(nil), s.Labels...),
		Wires:      make([]Wire, len(s.Wires)),
	}
	for i, w := range s.Wires {
		c.Wires[i] = Wire{ID: w.ID, Points: append([]Position(nil), w.Points...)}
	}
	return c
}
