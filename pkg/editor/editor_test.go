package editor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/route"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

const testSymbols = `
(symbol "Device:R"
  (body -1 -2 1 2)
  (pin "1" (base 0 -2) (tip 0 -3))
  (pin "2" (base 0 2) (tip 0 3)))
(symbol "Device:L"
  (body -1 -2 1 2)
  (pin "1" (base 0 -2) (tip 0 -5))
  (pin "2" (base 0 2) (tip 0 5)))
`

func pos(x, y float64) schematic.Position { return schematic.Position{X: x, Y: y} }

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	lib := library.NewMemoryLibrary()
	if err := lib.LoadString(testSymbols); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	cfg := DefaultConfig()
	cfg.GridSize = 1
	n := 0
	return New(schematic.NewDocument("root"), lib, cfg, Options{
		NewID: func() string {
			n++
			return fmt.Sprintf("e%d", n)
		},
	})
}

func activeSheet(t *testing.T, e *Editor) *schematic.Sheet {
	t.Helper()
	s, err := e.Document().Active()
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	return s
}

func mustPlace(t *testing.T, e *Editor, id, libID string, x, y float64, rotation int) {
	t.Helper()
	c := schematic.Component{ID: id, LibID: libID, Reference: id, Position: pos(x, y), Rotation: rotation}
	if _, err := e.PlaceComponent(c); err != nil {
		t.Fatalf("PlaceComponent(%s) failed: %v", id, err)
	}
}

// addWire and addLabel edit the sheet directly, bypassing maintenance.
func addWire(t *testing.T, e *Editor, id string, pts ...schematic.Position) {
	t.Helper()
	s := activeSheet(t, e)
	s.Wires = append(s.Wires, schematic.Wire{ID: id, Points: pts})
}

func addLabel(t *testing.T, e *Editor, text string, at schematic.Position) {
	t.Helper()
	s := activeSheet(t, e)
	s.Labels = append(s.Labels, schematic.Label{ID: "label-" + text, Text: text, Position: at})
}

func wire(t *testing.T, e *Editor, id string) schematic.Wire {
	t.Helper()
	w := activeSheet(t, e).Wire(id)
	if w == nil {
		t.Fatalf("wire %s not found", id)
	}
	return *w
}

func pinTip(t *testing.T, e *Editor, componentID, number string) schematic.Position {
	t.Helper()
	c := activeSheet(t, e).Component(componentID)
	if c == nil {
		t.Fatalf("component %s not found", componentID)
	}
	def, err := e.lib.Lookup(c.LibID)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	for _, p := range schematic.ResolvePins(*c, def) {
		if p.Number == number {
			return p.Tip
		}
	}
	t.Fatalf("pin %s.%s not found", componentID, number)
	return schematic.Position{}
}

func assertNoIssues(t *testing.T, e *Editor) {
	t.Helper()
	issues, err := e.Check()
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	for _, issue := range issues {
		t.Errorf("unexpected issue: %s", issue)
	}
}

func hasEnds(w schematic.Wire, a, b schematic.Position) bool {
	return (w.Start().Equal(a) && w.End().Equal(b)) || (w.Start().Equal(b) && w.End().Equal(a))
}

func TestDrawWireBetweenFacingPins(t *testing.T) {
	e := newTestEditor(t)
	mustPlace(t, e, "R1", "Device:R", 0, 0, 90)
	mustPlace(t, e, "R2", "Device:R", 11, 0, 90)

	from, to := pinTip(t, e, "R1", "1"), pinTip(t, e, "R2", "2")
	if !from.Equal(pos(3, 0)) || !to.Equal(pos(8, 0)) {
		t.Fatalf("unexpected pin tips %v %v", from, to)
	}

	id, err := e.DrawWire([]schematic.Position{from, to})
	if err != nil {
		t.Fatalf("DrawWire failed: %v", err)
	}
	w := wire(t, e, id)
	if len(w.Points) != 2 {
		t.Fatalf("expected a straight 2-point wire, got %v", w.Points)
	}
	if !w.Start().Equal(from) || !w.End().Equal(to) {
		t.Errorf("unexpected wire ends %v", w.Points)
	}
	if n := len(activeSheet(t, e).Wires); n != 1 {
		t.Errorf("expected 1 wire, got %d", n)
	}
	assertNoIssues(t, e)
}

func TestDrawWireTapAddsJunction(t *testing.T) {
	e := newTestEditor(t)
	mustPlace(t, e, "R1", "Device:R", 0, 0, 90)
	mustPlace(t, e, "R2", "Device:R", 11, 0, 90)
	if _, err := e.DrawWire([]schematic.Position{pos(3, 0), pos(8, 0)}); err != nil {
		t.Fatalf("DrawWire failed: %v", err)
	}
	addLabel(t, e, "TAP", pos(5, 5))
	if _, err := e.DrawWire([]schematic.Position{pos(5, 5), pos(5, 0)}); err != nil {
		t.Fatalf("DrawWire failed: %v", err)
	}

	junctions := activeSheet(t, e).Junctions
	if len(junctions) != 1 || !junctions[0].Position.Equal(pos(5, 0)) {
		t.Fatalf("expected one junction at (5,0), got %v", junctions)
	}
	assertNoIssues(t, e)
}

func TestDrawWireUnroutable(t *testing.T) {
	e := newTestEditor(t)
	var warnings []string
	e.warnings = WarningFunc(func(msg string) { warnings = append(warnings, msg) })
	mustPlace(t, e, "R1", "Device:R", 0, 0, 0)

	// The body centre is walled in by the body itself.
	_, err := e.DrawWire([]schematic.Position{pos(5, 0), pos(0, 0)})
	if !errors.Is(err, route.ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", warnings)
	}
	if n := len(activeSheet(t, e).Wires); n != 0 {
		t.Errorf("no wire should be created, got %d", n)
	}
	if !e.History().CanUndo() {
		t.Error("placement should still be undoable")
	}
}

func TestDrawWireInvalidInput(t *testing.T) {
	e := newTestEditor(t)
	tests := []struct {
		name string
		pts  []schematic.Position
	}{
		{"single point", []schematic.Position{pos(0, 0)}},
		{"zero length", []schematic.Position{pos(1, 1), pos(1.2, 0.9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.DrawWire(tt.pts); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPlaceComponentCollision(t *testing.T) {
	e := newTestEditor(t)
	mustPlace(t, e, "R1", "Device:R", 0, 0, 0)

	tests := []struct {
		name    string
		comp    schematic.Component
		wantErr bool
	}{
		{"overlapping body", schematic.Component{ID: "R2", LibID: "Device:R", Position: pos(1, 0)}, true},
		{"body over a pin stub", schematic.Component{ID: "R3", LibID: "Device:R", Position: pos(0, 5)}, true},
		{"pin on pin", schematic.Component{ID: "R4", LibID: "Device:R", Position: pos(0, 6)}, false},
		{"well apart", schematic.Component{ID: "R5", LibID: "Device:R", Position: pos(20, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(activeSheet(t, e).Components)
			_, err := e.PlaceComponent(tt.comp)
			if tt.wantErr {
				if !errors.Is(err, ErrPlacementRejected) {
					t.Fatalf("expected ErrPlacementRejected, got %v", err)
				}
				if n := len(activeSheet(t, e).Components); n != before {
					t.Errorf("sheet changed after rejection: %d components", n)
				}
				return
			}
			if err != nil {
				t.Fatalf("PlaceComponent failed: %v", err)
			}
		})
	}
}

func TestPlaceComponentErrors(t *testing.T) {
	e := newTestEditor(t)
	_, err := e.PlaceComponent(schematic.Component{LibID: "Device:Q"})
	if !errors.Is(err, library.ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol, got %v", err)
	}
	mustPlace(t, e, "R1", "Device:R", 0, 0, 0)
	if _, err := e.PlaceComponent(schematic.Component{ID: "R1", LibID: "Device:R", Position: pos(30, 0)}); err == nil {
		t.Error("duplicate id should be rejected")
	}
	id, err := e.PlaceComponent(schematic.Component{LibID: "Device:R", Position: pos(40.2, 0.3)})
	if err != nil {
		t.Fatalf("PlaceComponent failed: %v", err)
	}
	c := activeSheet(t, e).Component(id)
	if c == nil || !c.Position.Equal(pos(40, 0)) {
		t.Errorf("expected a snapped component at (40,0), got %+v", c)
	}
}

func TestPlacementReroutesBlockedWire(t *testing.T) {
	e := newTestEditor(t)
	addWire(t, e, "w1", pos(0, 0), pos(10, 0))
	addLabel(t, e, "A", pos(0, 0))
	addLabel(t, e, "B", pos(10, 0))

	mustPlace(t, e, "R3", "Device:R", 5, 0, 0)

	w := wire(t, e, "w1")
	if !w.Start().Equal(pos(0, 0)) || !w.End().Equal(pos(10, 0)) {
		t.Fatalf("endpoints changed: %v", w.Points)
	}
	path := e.Grid().ToGridPath(w.Points)
	if b := grid.Bends(path); b < 2 {
		t.Errorf("expected at least 2 bends, got %d: %v", b, w.Points)
	}
	body := grid.Box{Min: grid.Point{X: 4, Y: -2}, Max: grid.Point{X: 6, Y: 2}}
	for _, c := range grid.Cells(path) {
		if body.Contains(c) {
			t.Errorf("wire enters the body at %v", c)
		}
	}
	if e.LastReport().Rerouted != 1 {
		t.Errorf("expected 1 rerouted wire, got %+v", e.LastReport())
	}
	assertNoIssues(t, e)

	// A second pass over a consistent sheet changes nothing.
	rep, err := e.Repair()
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if rep.Changed() {
		t.Errorf("Repair changed a consistent sheet: %+v", rep)
	}
	if got := wire(t, e, "w1"); !samePath(e.Grid().ToGridPath(got.Points), path) {
		t.Errorf("geometry changed: %v -> %v", w.Points, got.Points)
	}
}

func TestPlacementKeepsTapOnReroutedWire(t *testing.T) {
	e := newTestEditor(t)
	addWire(t, e, "host", pos(0, 0), pos(12, 0))
	addWire(t, e, "tap", pos(2, -8), pos(2, 0))
	addLabel(t, e, "A", pos(0, 0))
	addLabel(t, e, "B", pos(12, 0))
	addLabel(t, e, "T", pos(2, -8))

	mustPlace(t, e, "R3", "Device:R", 6, 0, 0)

	sheet := activeSheet(t, e)
	nets := route.NetIDs(e.Grid(), sheet.Wires)
	if nets["host"] != nets["tap"] {
		t.Errorf("tap left the host net: host %v, tap %v", wire(t, e, "host").Points, wire(t, e, "tap").Points)
	}
	if w := wire(t, e, "tap"); !w.Start().Equal(pos(2, -8)) {
		t.Errorf("tap should keep its far end, got %v", w.Points)
	}
	assertNoIssues(t, e)
}

func TestPlacementKeepsDrawnTapConnected(t *testing.T) {
	e := newTestEditor(t)
	addWire(t, e, "host", pos(0, 0), pos(12, 0))
	addLabel(t, e, "A", pos(0, 0))
	addLabel(t, e, "B", pos(12, 0))
	addLabel(t, e, "T", pos(2, -8))
	tap, err := e.DrawWire([]schematic.Position{pos(2, -8), pos(2, 0)})
	if err != nil {
		t.Fatalf("DrawWire failed: %v", err)
	}
	if n := len(activeSheet(t, e).Junctions); n != 1 {
		t.Fatalf("expected a junction at the tap, got %d", n)
	}

	mustPlace(t, e, "R3", "Device:R", 6, 0, 0)

	sheet := activeSheet(t, e)
	nets := route.NetIDs(e.Grid(), sheet.Wires)
	if nets["host"] != nets[tap] {
		t.Errorf("tap left the host net: host %v, tap %v", wire(t, e, "host").Points, wire(t, e, tap).Points)
	}
	idx := e.wireIndex(sheet.Wires)
	for _, j := range sheet.Junctions {
		if n := len(idx.At(e.Grid().ToGrid(j.Position))); n < 2 {
			t.Errorf("junction %s at %v touches %d wires", j.ID, j.Position, n)
		}
	}
	assertNoIssues(t, e)
}

func TestStaleJunctionDoesNotAnchor(t *testing.T) {
	e := newTestEditor(t)
	addWire(t, e, "w1", pos(0, 0), pos(5, 0))
	addLabel(t, e, "A", pos(0, 0))
	s := activeSheet(t, e)
	s.Junctions = append(s.Junctions, schematic.Junction{ID: "j1", Position: pos(5, 0)})

	issues, err := e.Check()
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if len(issues) != 1 || issues[0].Kind != IssueDangling || !issues[0].At.Equal(pos(5, 0)) {
		t.Fatalf("expected a dangling end at (5,0), got %v", issues)
	}

	rep, err := e.Repair()
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if rep.JunctionsRemoved != 1 || len(activeSheet(t, e).Junctions) != 0 {
		t.Errorf("junction on a single wire end should be removed, got %+v", rep)
	}
}

func TestRotateRetargetsAndMaterializes(t *testing.T) {
	e := newTestEditor(t)
	mustPlace(t, e, "R1", "Device:R", 10, 0, 0)
	mustPlace(t, e, "R2", "Device:R", 10, 6, 0)
	addWire(t, e, "w1", pos(10, -3), pos(20, -3))
	addLabel(t, e, "OUT", pos(20, -3))

	if err := e.RotateComponent("R1", 90); err != nil {
		t.Fatalf("RotateComponent failed: %v", err)
	}

	w1 := wire(t, e, "w1")
	if !w1.Start().Equal(pinTip(t, e, "R1", "1")) || !w1.Start().Equal(pos(13, 0)) {
		t.Errorf("w1 should start at the rotated pin (13,0), got %v", w1.Points)
	}
	if !w1.End().Equal(pos(20, -3)) {
		t.Errorf("w1 far end moved: %v", w1.Points)
	}

	sheet := activeSheet(t, e)
	if len(sheet.Wires) != 2 {
		t.Fatalf("expected exactly one materialized wire, got %d wires", len(sheet.Wires))
	}
	var added schematic.Wire
	for _, w := range sheet.Wires {
		if w.ID != "w1" {
			added = w
		}
	}
	if !hasEnds(added, pos(7, 0), pos(10, 3)) {
		t.Errorf("materialized wire should join (7,0) and (10,3), got %v", added.Points)
	}
	rep := e.LastReport()
	if rep.Retargeted != 1 || rep.Materialized != 1 {
		t.Errorf("unexpected report %+v", rep)
	}
	assertNoIssues(t, e)
}

func TestMoveSharedContactMaterializesOnce(t *testing.T) {
	e := newTestEditor(t)
	mustPlace(t, e, "R1", "Device:R", 0, 0, 0)
	mustPlace(t, e, "R2", "Device:R", 0, 6, 0)
	mustPlace(t, e, "L1", "Device:L", -5, 3, 90)
	if tip := pinTip(t, e, "L1", "1"); !tip.Equal(pos(0, 3)) {
		t.Fatalf("L1 pin 1 should touch (0,3), got %v", tip)
	}

	if err := e.MoveComponent("R1", pos(20, 0)); err != nil {
		t.Fatalf("MoveComponent failed: %v", err)
	}

	wires := activeSheet(t, e).Wires
	if len(wires) != 1 {
		t.Fatalf("expected one materialized wire, got %d", len(wires))
	}
	if !hasEnds(wires[0], pos(20, 3), pos(0, 3)) {
		t.Errorf("wire should join (20,3) and (0,3), got %v", wires[0].Points)
	}
	assertNoIssues(t, e)
}

func TestTransformsKeepWiresOnPins(t *testing.T) {
	tests := []struct {
		name string
		op   func(e *Editor) error
	}{
		{"move", func(e *Editor) error { return e.MoveComponent("R1", pos(0, 12)) }},
		{"rotate", func(e *Editor) error { return e.RotateComponent("R1", 270) }},
		{"mirror", func(e *Editor) error { return e.MirrorComponent("R1") }},
		{"group", func(e *Editor) error { return e.MoveGroup([]string{"R1"}, pos(-4, 3)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor(t)
			mustPlace(t, e, "R1", "Device:R", 0, 0, 0)
			addWire(t, e, "w1", pos(0, -3), pos(10, -3))
			addWire(t, e, "w2", pos(0, 3), pos(-10, 3))
			addLabel(t, e, "A", pos(10, -3))
			addLabel(t, e, "B", pos(-10, 3))

			if err := tt.op(e); err != nil {
				t.Fatalf("transform failed: %v", err)
			}
			if w := wire(t, e, "w1"); !w.Start().Equal(pinTip(t, e, "R1", "1")) {
				t.Errorf("w1 should start at pin 1, got %v", w.Points)
			}
			if w := wire(t, e, "w2"); !w.Start().Equal(pinTip(t, e, "R1", "2")) {
				t.Errorf("w2 should start at pin 2, got %v", w.Points)
			}
			assertNoIssues(t, e)
		})
	}
}

func TestMoveGroupTranslatesWire(t *testing.T) {
	e := newTestEditor(t)
	mustPlace(t, e, "R1", "Device:R", 0, 0, 0)
	mustPlace(t, e, "R2", "Device:R", 10, 0, 0)
	addWire(t, e, "w1", pos(0, 3), pos(0, 5), pos(10, 5), pos(10, 3))

	if err := e.MoveGroup([]string{"R1", "R2"}, pos(0, 10)); err != nil {
		t.Fatalf("MoveGroup failed: %v", err)
	}
	want := []schematic.Position{pos(0, 13), pos(0, 15), pos(10, 15), pos(10, 13)}
	got := wire(t, e, "w1").Points
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("point %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if e.LastReport().Translated != 1 {
		t.Errorf("expected a rigid translation, got %+v", e.LastReport())
	}
}

func TestTransformRejectedLeavesSheet(t *testing.T) {
	e := newTestEditor(t)
	mustPlace(t, e, "R1", "Device:R", 0, 0, 0)
	mustPlace(t, e, "R2", "Device:R", 10, 0, 0)
	addWire(t, e, "w1", pos(0, 3), pos(10, 3))

	err := e.MoveComponent("R2", pos(1, 0))
	if !errors.Is(err, ErrPlacementRejected) {
		t.Fatalf("expected ErrPlacementRejected, got %v", err)
	}
	if c := activeSheet(t, e).Component("R2"); !c.Position.Equal(pos(10, 0)) {
		t.Errorf("R2 moved despite rejection: %v", c.Position)
	}
	if w := wire(t, e, "w1"); !w.End().Equal(pos(10, 3)) {
		t.Errorf("wire changed despite rejection: %v", w.Points)
	}
	if err := e.RotateComponent("nope", 90); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRouteOnTransform(t *testing.T) {
	e := newTestEditor(t)
	mustPlace(t, e, "R1", "Device:R", 0, 0, 0)
	addWire(t, e, "w1", pos(0, -3), pos(10, -3))
	addLabel(t, e, "A", pos(10, -3))

	c := activeSheet(t, e).Component("R1")
	before := *c
	c.Position = pos(0, -6)

	rep, err := e.RouteOnTransform(EventMoved, before)
	if err != nil {
		t.Fatalf("RouteOnTransform failed: %v", err)
	}
	if rep.Retargeted != 1 {
		t.Errorf("expected 1 retargeted wire, got %+v", rep)
	}
	if w := wire(t, e, "w1"); !w.Start().Equal(pos(0, -9)) {
		t.Errorf("w1 should follow pin 1 to (0,-9), got %v", w.Points)
	}
}

func TestDeletePrunesDanglingWires(t *testing.T) {
	e := newTestEditor(t)
	mustPlace(t, e, "R1", "Device:R", 0, 0, 0)
	addWire(t, e, "w1", pos(0, -3), pos(5, -3))
	addWire(t, e, "w2", pos(0, 3), pos(5, 3))

	if err := e.DeleteElements([]string{"R1"}); err != nil {
		t.Fatalf("DeleteElements failed: %v", err)
	}
	if n := len(activeSheet(t, e).Wires); n != 0 {
		t.Errorf("expected both wires pruned, %d left", n)
	}
	if e.LastReport().Pruned != 2 {
		t.Errorf("expected 2 pruned wires, got %+v", e.LastReport())
	}
}

func TestDeletePrunesToFixedPoint(t *testing.T) {
	e := newTestEditor(t)
	mustPlace(t, e, "R1", "Device:R", 0, 0, 0)
	mustPlace(t, e, "R2", "Device:R", 20, 0, 0)
	addWire(t, e, "a", pos(0, 3), pos(5, 3))
	addWire(t, e, "b", pos(5, 3), pos(5, 8))
	addLabel(t, e, "X", pos(5, 8))
	addWire(t, e, "keep", pos(20, 3), pos(20, 8))
	addLabel(t, e, "K", pos(20, 8))
	s := activeSheet(t, e)
	s.Junctions = append(s.Junctions, schematic.Junction{ID: "j-stale", Position: pos(30, 30)})

	if err := e.DeleteElements([]string{"R1"}); err != nil {
		t.Fatalf("DeleteElements failed: %v", err)
	}
	s = activeSheet(t, e)
	if len(s.Wires) != 1 || s.Wires[0].ID != "keep" {
		t.Errorf("expected only the anchored wire to survive, got %v", s.Wires)
	}
	if len(s.Junctions) != 0 {
		t.Errorf("stale junction should be removed, got %v", s.Junctions)
	}
	assertNoIssues(t, e)

	if err := e.DeleteElements([]string{"missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepairSeparatesNets(t *testing.T) {
	e := newTestEditor(t)
	addWire(t, e, "w1", pos(0, 0), pos(10, 0))
	addWire(t, e, "w2", pos(2, -5), pos(2, 0), pos(6, 0), pos(6, 5))
	for i, p := range []schematic.Position{pos(0, 0), pos(10, 0), pos(2, -5), pos(6, 5)} {
		addLabel(t, e, fmt.Sprintf("L%d", i), p)
	}

	issues, err := e.Check()
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if len(issues) != 1 || issues[0].Kind != IssueNetOverlap {
		t.Fatalf("expected one net overlap, got %v", issues)
	}

	rep, err := e.Repair()
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if rep.Separated != 1 {
		t.Errorf("expected 1 separated wire, got %+v", rep)
	}
	w2 := wire(t, e, "w2")
	if !w2.Start().Equal(pos(2, -5)) || !w2.End().Equal(pos(6, 5)) {
		t.Errorf("w2 endpoints changed: %v", w2.Points)
	}
	if !wire(t, e, "w1").End().Equal(pos(10, 0)) {
		t.Error("the earlier wire must stay put")
	}
	assertNoIssues(t, e)

	again, err := e.Repair()
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if again.Changed() {
		t.Errorf("second Repair should be a no-op, got %+v", again)
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if n := len(wire(t, e, "w2").Points); n != 4 {
		t.Errorf("Undo should restore the overlapping wire, got %d points", n)
	}
}

func TestCheckReportsProblems(t *testing.T) {
	e := newTestEditor(t)
	mustPlace(t, e, "R1", "Device:R", 5, 0, 0)
	addWire(t, e, "w1", pos(0, 0), pos(10, 0))

	issues, err := e.Check()
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	kinds := make(map[IssueKind]int)
	for _, i := range issues {
		kinds[i.Kind]++
	}
	if kinds[IssueDangling] != 2 {
		t.Errorf("expected 2 dangling ends, got %v", issues)
	}
	if kinds[IssueBlocked] != 1 {
		t.Errorf("expected 1 blocked wire, got %v", issues)
	}
}

func TestUndoRedoPlacement(t *testing.T) {
	e := newTestEditor(t)
	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
	mustPlace(t, e, "R1", "Device:R", 0, 0, 0)

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if n := len(activeSheet(t, e).Components); n != 0 {
		t.Errorf("expected empty sheet after undo, got %d components", n)
	}
	if err := e.Redo(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if activeSheet(t, e).Component("R1") == nil {
		t.Error("R1 should be back after redo")
	}
	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
	if !e.Document().Modified {
		t.Error("document should be marked modified")
	}
}
