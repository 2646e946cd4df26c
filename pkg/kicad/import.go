// Package kicad imports KiCad schematic sheets (.kicad_sch) into routable
// documents. Only the geometry the router needs is read: symbol bodies and
// pins, placed symbols, wires, junctions and labels.
package kicad

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// Minimum supported KiCad version for schematics (6.0 = 20211014)
const MinSupportedVersion = 20211014

// Result is an imported sheet together with the symbol definitions its
// components refer to.
type Result struct {
	Document *schematic.Document
	Symbols  []*schematic.SymbolDef
	Skipped  []string // Elements that were not converted, with the reason
}

// ImportFile reads and converts a KiCad schematic file
func ImportFile(filename string) (*Result, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Import(file)
}

// Import converts a KiCad schematic read from r
func Import(r io.Reader) (*Result, error) {
	root, err := parseSexpr(r)
	if err != nil {
		return nil, err
	}
	if root.Name() != "kicad_sch" {
		return nil, fmt.Errorf("not a KiCad schematic file: expected 'kicad_sch', got '%s'", root.Name())
	}
	if v, ok := root.Value("version"); ok {
		version, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", v, err)
		}
		if version < MinSupportedVersion {
			return nil, fmt.Errorf("unsupported schematic version %d (minimum %d)", version, MinSupportedVersion)
		}
	}

	im := &importer{
		libs: make(map[string]map[int]*unitGeometry),
		defs: make(map[string]*schematic.SymbolDef),
	}
	if libs, ok := root.Find("lib_symbols"); ok {
		for _, sym := range libs.FindAll("symbol") {
			im.addLibSymbol(sym)
		}
	}

	sheetID := "root"
	if id, ok := root.Value("uuid"); ok {
		sheetID = id
	}
	doc := schematic.NewDocument(sheetID)
	sheet, err := doc.Active()
	if err != nil {
		return nil, err
	}

	for i, node := range root.FindAll("symbol") {
		if c, ok := im.component(node, i); ok {
			sheet.Components = append(sheet.Components, c)
		}
	}
	for i, node := range root.FindAll("wire") {
		if w, ok := im.wire(node, i); ok {
			sheet.Wires = append(sheet.Wires, w)
		}
	}
	for i, node := range root.FindAll("junction") {
		at, ok := position(node)
		if !ok {
			im.skip("junction %d: missing position", i+1)
			continue
		}
		sheet.Junctions = append(sheet.Junctions, schematic.Junction{ID: elementID(node, "junction", i), Position: at})
	}
	for _, kind := range []string{"label", "global_label", "hierarchical_label"} {
		for i, node := range root.FindAll(kind) {
			text, err := node.String(1)
			at, ok := position(node)
			if err != nil || !ok {
				im.skip("%s %d: missing text or position", kind, i+1)
				continue
			}
			sheet.Labels = append(sheet.Labels, schematic.Label{ID: elementID(node, kind, i), Text: text, Position: at})
		}
	}
	for _, kind := range []string{"bus", "bus_entry", "sheet"} {
		if n := len(root.FindAll(kind)); n > 0 {
			im.skip("%d %s elements are not supported", n, kind)
		}
	}

	res := &Result{Document: doc, Skipped: im.skipped}
	for _, def := range im.defs {
		res.Symbols = append(res.Symbols, def)
	}
	sort.Slice(res.Symbols, func(i, j int) bool { return res.Symbols[i].LibID < res.Symbols[j].LibID })
	return res, nil
}

// unitGeometry is the drawing of one unit of a library symbol
type unitGeometry struct {
	pins []schematic.PinDef
	body schematic.BoundingBox
}

type importer struct {
	libs    map[string]map[int]*unitGeometry // lib name -> unit -> geometry
	defs    map[string]*schematic.SymbolDef  // definitions in use, by LibID
	skipped []string
}

func (im *importer) skip(format string, args ...any) {
	im.skipped = append(im.skipped, fmt.Sprintf(format, args...))
}

// addLibSymbol collects the pins and body outline of every unit. Unit 0
// holds what all units share; alternate body styles are ignored.
func (im *importer) addLibSymbol(node *List) {
	name, err := node.String(1)
	if err != nil {
		return
	}
	units := make(map[int]*unitGeometry)
	for _, sub := range node.FindAll("symbol") {
		subName, _ := sub.String(1)
		unit, style, ok := unitSuffix(subName)
		if !ok || style > 1 {
			continue
		}
		g, ok := units[unit]
		if !ok {
			g = &unitGeometry{body: schematic.NewBoundingBox()}
			units[unit] = g
		}
		readOutline(sub, &g.body)
		for _, pn := range sub.FindAll("pin") {
			if pin, ok := readPin(pn); ok {
				g.pins = append(g.pins, pin)
			}
		}
	}
	im.libs[name] = units
}

// unitSuffix splits "R_1_1" into unit 1, body style 1
func unitSuffix(name string) (unit, style int, ok bool) {
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return 0, 0, false
	}
	unit, err1 := strconv.Atoi(parts[len(parts)-2])
	style, err2 := strconv.Atoi(parts[len(parts)-1])
	return unit, style, err1 == nil && err2 == nil
}

// definition returns the symbol definition for one unit of a library
// symbol, creating it on first use. Units after the first get their own
// library id, "Lib:Name/2".
func (im *importer) definition(libName string, unit int) *schematic.SymbolDef {
	units, ok := im.libs[libName]
	if !ok {
		return nil
	}
	if unit < 1 {
		unit = 1
	}
	libID := libName
	if unit > 1 {
		libID = fmt.Sprintf("%s/%d", libName, unit)
	}
	if def, ok := im.defs[libID]; ok {
		return def
	}

	def := &schematic.SymbolDef{LibID: libID, Body: schematic.NewBoundingBox()}
	for _, u := range []int{0, unit} {
		g, ok := units[u]
		if !ok {
			continue
		}
		def.Pins = append(def.Pins, g.pins...)
		if !g.body.IsEmpty() {
			def.Body.Expand(g.body.Min)
			def.Body.Expand(g.body.Max)
		}
	}
	if def.Body.IsEmpty() {
		for _, p := range def.Pins {
			def.Body.Expand(p.Base)
		}
	}
	im.defs[libID] = def
	return def
}

func (im *importer) component(node *List, index int) (schematic.Component, bool) {
	libName, ok := node.Value("lib_id")
	if !ok {
		im.skip("symbol %d: missing lib_id", index+1)
		return schematic.Component{}, false
	}
	ref := reference(node)
	unit := 1
	if u, ok := node.Value("unit"); ok {
		unit, _ = strconv.Atoi(u)
	}
	def := im.definition(libName, unit)
	if def == nil {
		im.skip("symbol %s: no library definition for %s", ref, libName)
		return schematic.Component{}, false
	}

	at, ok := node.Find("at")
	if !ok {
		im.skip("symbol %s: missing position", ref)
		return schematic.Component{}, false
	}
	x, y, err := at.XY()
	if err != nil {
		im.skip("symbol %s: %v", ref, err)
		return schematic.Component{}, false
	}
	angle, _ := at.Float(3)
	mirror, _ := node.Value("mirror")

	c := schematic.Component{
		ID:        elementID(node, "symbol", index),
		LibID:     def.LibID,
		Reference: ref,
		Position:  schematic.Position{X: roundMM(x), Y: roundMM(y)},
	}
	c.Rotation, c.Mirror = orientation(int(math.Round(angle)), mirror)
	return c, true
}

// orientation converts a KiCad symbol angle and mirror axis. KiCad angles
// run counter-clockwise on screen and the mirror is applied after the
// rotation.
func orientation(angle int, mirror string) (int, bool) {
	switch mirror {
	case "y":
		return schematic.NormalizeRotation(angle), true
	case "x":
		return schematic.NormalizeRotation(angle + 180), true
	}
	return schematic.NormalizeRotation(360 - schematic.NormalizeRotation(angle)), false
}

func (im *importer) wire(node *List, index int) (schematic.Wire, bool) {
	id := elementID(node, "wire", index)
	pts, ok := node.Find("pts")
	if !ok {
		im.skip("wire %s: missing points", id)
		return schematic.Wire{}, false
	}
	w := schematic.Wire{ID: id}
	for _, xy := range pts.FindAll("xy") {
		x, y, err := xy.XY()
		if err != nil {
			im.skip("wire %s: %v", id, err)
			return schematic.Wire{}, false
		}
		w.Points = append(w.Points, schematic.Position{X: roundMM(x), Y: roundMM(y)})
	}
	if len(w.Points) < 2 || (len(w.Points) == 2 && w.Start().Equal(w.End())) {
		im.skip("wire %s: degenerate", id)
		return schematic.Wire{}, false
	}
	return w, true
}

// readOutline grows bb by every drawn primitive of a symbol unit.
// Library Y points up; document Y points down.
func readOutline(unit *List, bb *schematic.BoundingBox) {
	expand := func(node *List, key string) {
		if child, ok := node.Find(key); ok {
			if x, y, err := child.XY(); err == nil {
				bb.Expand(schematic.Position{X: roundMM(x), Y: roundMM(-y)})
			}
		}
	}
	for _, rect := range unit.FindAll("rectangle") {
		expand(rect, "start")
		expand(rect, "end")
	}
	for _, arc := range unit.FindAll("arc") {
		expand(arc, "start")
		expand(arc, "mid")
		expand(arc, "end")
	}
	for _, poly := range unit.FindAll("polyline") {
		if pts, ok := poly.Find("pts"); ok {
			for _, xy := range pts.FindAll("xy") {
				if x, y, err := xy.XY(); err == nil {
					bb.Expand(schematic.Position{X: roundMM(x), Y: roundMM(-y)})
				}
			}
		}
	}
	for _, circle := range unit.FindAll("circle") {
		center, ok := circle.Find("center")
		if !ok {
			continue
		}
		x, y, err := center.XY()
		if err != nil {
			continue
		}
		r := 0.0
		if rn, ok := circle.Find("radius"); ok {
			r, _ = rn.Float(1)
		}
		bb.Expand(schematic.Position{X: roundMM(x - r), Y: roundMM(-y - r)})
		bb.Expand(schematic.Position{X: roundMM(x + r), Y: roundMM(-y + r)})
	}
}

// readPin converts (pin type style (at x y angle) (length l) (name ..) (number ..)).
// The pin position is its electrical end; the angle points toward the body.
func readPin(node *List) (schematic.PinDef, bool) {
	at, ok := node.Find("at")
	if !ok {
		return schematic.PinDef{}, false
	}
	x, y, err := at.XY()
	if err != nil {
		return schematic.PinDef{}, false
	}
	angle, _ := at.Float(3)
	length := 0.0
	if ln, ok := node.Find("length"); ok {
		length, _ = ln.Float(1)
	}

	pin := schematic.PinDef{}
	pin.Number, _ = node.Value("number")
	if name, ok := node.Value("name"); ok && name != "~" {
		pin.Name = name
	}

	var dx, dy float64
	switch schematic.NormalizeRotation(int(math.Round(angle))) {
	case 0:
		dx, pin.Direction = 1, schematic.PinLeft
	case 90:
		dy, pin.Direction = -1, schematic.PinDown
	case 180:
		dx, pin.Direction = -1, schematic.PinRight
	default:
		dy, pin.Direction = 1, schematic.PinUp
	}
	pin.Tip = schematic.Position{X: roundMM(x), Y: roundMM(-y)}
	pin.Base = schematic.Position{X: roundMM(x + dx*length), Y: roundMM(-y + dy*length)}
	return pin, true
}

func reference(node *List) string {
	for _, prop := range node.FindAll("property") {
		if key, _ := prop.String(1); key == "Reference" {
			ref, _ := prop.String(2)
			return ref
		}
	}
	return ""
}

func position(node *List) (schematic.Position, bool) {
	at, ok := node.Find("at")
	if !ok {
		return schematic.Position{}, false
	}
	x, y, err := at.XY()
	if err != nil {
		return schematic.Position{}, false
	}
	return schematic.Position{X: roundMM(x), Y: roundMM(y)}, true
}

// elementID prefers the KiCad uuid
func elementID(node *List, kind string, index int) string {
	if id, ok := node.Value("uuid"); ok && id != "" {
		return id
	}
	return fmt.Sprintf("%s-%d", kind, index+1)
}

// roundMM drops float noise below 0.1 µm
func roundMM(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
