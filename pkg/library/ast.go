package library

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// File represents a complete symbol library file
type File struct {
	Symbols []*SymbolDecl `@@*`
}

// SymbolDecl represents one (symbol "Lib:Name" ...) declaration
type SymbolDecl struct {
	Name  string        `LParen "symbol" @String`
	Items []*SymbolItem `@@* RParen`
}

// SymbolItem is either the body box or a pin
type SymbolItem struct {
	Body *BodyDecl `  @@`
	Pin  *PinDecl  `| @@`
}

// BodyDecl represents (body minX minY maxX maxY)
type BodyDecl struct {
	MinX float64 `LParen "body" @Number`
	MinY float64 `@Number`
	MaxX float64 `@Number`
	MaxY float64 `@Number RParen`
}

// PinDecl represents (pin "num" ["name"] (base x y) (tip x y) [direction])
type PinDecl struct {
	Number    string `LParen "pin" @String`
	Name      string `@String?`
	Base      *XY    `LParen "base" @@ RParen`
	Tip       *XY    `LParen "tip" @@ RParen`
	Direction string `@( "up" | "down" | "left" | "right" )? RParen`
}

// XY is a coordinate pair
type XY struct {
	X float64 `@Number`
	Y float64 `@Number`
}

func (xy *XY) position() schematic.Position {
	if xy == nil {
		return schematic.Position{}
	}
	return schematic.Position{X: xy.X, Y: xy.Y}
}

// Definitions converts the parsed file into resolved symbol definitions.
// Symbols without a body get the bounding box of their pin bases.
func (f *File) Definitions() []*schematic.SymbolDef {
	defs := make([]*schematic.SymbolDef, 0, len(f.Symbols))
	for _, s := range f.Symbols {
		def := &schematic.SymbolDef{LibID: s.Name, Body: schematic.NewBoundingBox()}
		hasBody := false
		for _, item := range s.Items {
			switch {
			case item.Body != nil:
				def.Body = schematic.BoundingBox{
					Min: schematic.Position{X: min(item.Body.MinX, item.Body.MaxX), Y: min(item.Body.MinY, item.Body.MaxY)},
					Max: schematic.Position{X: max(item.Body.MinX, item.Body.MaxX), Y: max(item.Body.MinY, item.Body.MaxY)},
				}
				hasBody = true
			case item.Pin != nil:
				def.Pins = append(def.Pins, schematic.PinDef{
					Number:    item.Pin.Number,
					Name:      item.Pin.Name,
					Base:      item.Pin.Base.position(),
					Tip:       item.Pin.Tip.position(),
					Direction: schematic.PinDirection(item.Pin.Direction),
				})
			}
		}
		if !hasBody {
			for _, p := range def.Pins {
				def.Body.Expand(p.Base)
			}
		}
		defs = append(defs, def)
	}
	return defs
}
