// Package editor applies structural edits to the active sheet of a
// schematic document and keeps its wiring consistent afterwards.
//
// Every entry point mutates the sheet and runs the maintenance cascade for
// its event synchronously: wires follow moved pins, wires are materialized
// for pins pulled apart, blocked wires are rerouted, wires overlapping a
// foreign net are separated and dangling wires are pruned.
package editor

import (
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/route"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// WarningSink receives user-facing warnings. It is only called when a
// user-drawn wire cannot be routed.
type WarningSink interface {
	Warn(msg string)
}

// WarningFunc adapts a function to WarningSink
type WarningFunc func(msg string)

// Warn calls f(msg)
func (f WarningFunc) Warn(msg string) { f(msg) }

// Options holds the collaborators injected into an Editor. Zero values get
// defaults: a discarding logger, a history of Config.HistoryDepth, no
// warning sink and random UUIDs for new elements.
type Options struct {
	Logger   *log.Logger
	History  *History
	Warnings WarningSink
	NewID    func() string
}

// Editor edits the active sheet of one document.
type Editor struct {
	doc      *schematic.Document
	lib      library.Resolver
	cfg      Config
	grid     grid.Grid
	router   *route.Router
	logger   *log.Logger
	history  *History
	warnings WarningSink
	newID    func() string

	last Report
}

// New creates an editor. A nil cfg uses DefaultConfig.
func New(doc *schematic.Document, lib library.Resolver, cfg *Config, opts Options) *Editor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	_ = c.Validate()

	e := &Editor{
		doc:      doc,
		lib:      lib,
		cfg:      c,
		grid:     grid.New(c.GridSize),
		router:   route.NewRouter(c.Route),
		logger:   opts.Logger,
		history:  opts.History,
		warnings: opts.Warnings,
		newID:    opts.NewID,
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard, "", 0)
	}
	if e.history == nil {
		e.history = NewHistory(c.HistoryDepth)
	}
	if e.newID == nil {
		e.newID = func() string { return uuid.New().String() }
	}
	return e
}

// Document returns the edited document
func (e *Editor) Document() *schematic.Document { return e.doc }

// Grid returns the routing grid
func (e *Editor) Grid() grid.Grid { return e.grid }

// Library returns the symbol resolver
func (e *Editor) Library() library.Resolver { return e.lib }

// History returns the undo history
func (e *Editor) History() *History { return e.history }

// LastReport returns the report of the most recent cascade
func (e *Editor) LastReport() Report { return e.last }

func (e *Editor) sheet() (*schematic.Sheet, error) {
	s, err := e.doc.Active()
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	return s, nil
}

// resolve returns the definition for libID or nil. Unresolved components
// are left out of routing and collision checks.
func (e *Editor) resolve(libID string) *schematic.SymbolDef {
	if e.lib == nil {
		return nil
	}
	def, err := e.lib.Lookup(libID)
	if err != nil {
		e.logger.Printf("skipping %s: %v", libID, err)
		return nil
	}
	return def
}

// PlaceComponent adds a component to the active sheet. The position is
// snapped to the grid and an id is assigned when c.ID is empty. Placement
// fails with ErrPlacementRejected when the component would overlap another
// one except at an exact pin-on-pin contact.
func (e *Editor) PlaceComponent(c schematic.Component) (string, error) {
	sheet, err := e.sheet()
	if err != nil {
		return "", err
	}
	if e.lib == nil {
		return "", fmt.Errorf("editor: place %s: %w", c.LibID, library.ErrUnknownSymbol)
	}
	def, err := e.lib.Lookup(c.LibID)
	if err != nil {
		return "", fmt.Errorf("editor: place %s: %w", c.LibID, err)
	}
	if c.ID == "" {
		c.ID = e.newID()
	} else if sheet.Component(c.ID) != nil {
		return "", fmt.Errorf("editor: component id %q already in use", c.ID)
	}
	c.Position = e.grid.Snap(c.Position)
	c.Rotation = schematic.NormalizeRotation(c.Rotation)

	lay := e.layout(sheet)
	part := route.NewPart(e.grid, c, def)
	if err := lay.collision(map[string]bool{c.ID: true}, []route.Part{part}); err != nil {
		return "", err
	}

	e.history.Record(sheet)
	sheet.Components = append(sheet.Components, c)
	e.cascade(sheet, EventPlaced, nil)
	e.doc.Touch()
	e.logger.Printf("placed %s (%s) at %v", c.ID, c.LibID, c.Position)
	return c.ID, nil
}

// MoveComponent moves a component to a new position
func (e *Editor) MoveComponent(id string, to schematic.Position) error {
	to = e.grid.Snap(to)
	return e.transform(EventMoved, []string{id}, func(c *schematic.Component) {
		c.Position = to
	})
}

// RotateComponent rotates a component about its origin. degrees is rounded
// down to a quarter turn.
func (e *Editor) RotateComponent(id string, degrees int) error {
	return e.transform(EventRotated, []string{id}, func(c *schematic.Component) {
		c.Rotation = schematic.NormalizeRotation(c.Rotation + degrees)
	})
}

// MirrorComponent toggles the mirror flag of a component
func (e *Editor) MirrorComponent(id string) error {
	return e.transform(EventMirrored, []string{id}, func(c *schematic.Component) {
		c.Mirror = !c.Mirror
	})
}

// MoveGroup translates several components together. Wires whose two ends
// sit on co-moving pins keep their shape.
func (e *Editor) MoveGroup(ids []string, delta schematic.Position) error {
	delta = e.grid.Snap(delta)
	return e.transform(EventGroupMoved, ids, func(c *schematic.Component) {
		c.Position = c.Position.Add(delta)
	})
}

func (e *Editor) transform(ev Event, ids []string, apply func(*schematic.Component)) error {
	sheet, err := e.sheet()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("editor: %s: no components given", ev)
	}
	moving := make(map[string]bool, len(ids))
	for _, id := range ids {
		if sheet.Component(id) == nil {
			return fmt.Errorf("%w: component %s", ErrNotFound, id)
		}
		moving[id] = true
	}

	snapshot := sheet.Clone()
	before := make([]schematic.Component, 0, len(ids))
	for i := range sheet.Components {
		c := &sheet.Components[i]
		if !moving[c.ID] {
			continue
		}
		before = append(before, *c)
		apply(c)
	}

	lay := e.layout(sheet)
	var candidates []route.Part
	for _, p := range lay.parts {
		if moving[p.ID] {
			candidates = append(candidates, p)
		}
	}
	if err := lay.collision(moving, candidates); err != nil {
		*sheet = *snapshot
		return err
	}

	e.history.Record(snapshot)
	e.cascade(sheet, ev, before)
	e.doc.Touch()
	return nil
}

// RouteOnTransform runs the maintenance passes for a transform the caller
// has already applied to the sheet. before holds the transformed
// components as they were prior to the change. No collision check and no
// history snapshot are made.
func (e *Editor) RouteOnTransform(ev Event, before ...schematic.Component) (Report, error) {
	sheet, err := e.sheet()
	if err != nil {
		return Report{}, err
	}
	e.cascade(sheet, ev, before)
	e.doc.Touch()
	return e.last, nil
}

// DrawWire routes a user-drawn wire through the given points and adds it to
// the sheet. Each consecutive pair of points is routed as one leg. When any
// leg cannot be routed a warning is emitted, no wire is created and the
// returned error wraps route.ErrNoRoute.
func (e *Editor) DrawWire(points []schematic.Position) (string, error) {
	sheet, err := e.sheet()
	if err != nil {
		return "", err
	}
	if len(points) < 2 {
		return "", fmt.Errorf("editor: a wire needs at least two points, got %d", len(points))
	}
	pts := e.grid.ToGridPath(points)
	degenerate := true
	for _, p := range pts[1:] {
		if p != pts[0] {
			degenerate = false
			break
		}
	}
	if degenerate {
		return "", fmt.Errorf("editor: wire has zero length")
	}

	pl := e.planner(sheet.Wires, e.layout(sheet))
	var path []grid.Point
	for i := 1; i < len(pts); i++ {
		from, to := pts[i-1], pts[i]
		if from == to {
			continue
		}
		leg, err := e.router.Route(pl.request(from, to, nil))
		if err != nil {
			msg := fmt.Sprintf("cannot route wire from %v to %v", e.grid.ToWorld(from), e.grid.ToWorld(to))
			if e.warnings != nil {
				e.warnings.Warn(msg)
			}
			e.logger.Print(msg)
			return "", fmt.Errorf("editor: draw wire: %w", err)
		}
		path = append(path, leg...)
	}
	path = grid.Simplify(path)

	e.history.Record(sheet)
	w := schematic.Wire{ID: e.newID(), Points: e.grid.ToWorldPath(path)}
	sheet.Wires = append(sheet.Wires, w)
	e.cascade(sheet, EventWireDrawn, nil)
	e.doc.Touch()
	return w.ID, nil
}

// DeleteElements removes components, wires, junctions and labels by id,
// then prunes wires left dangling. Unknown ids are ignored; ErrNotFound is
// returned only when none of the ids matched.
func (e *Editor) DeleteElements(ids []string) error {
	sheet, err := e.sheet()
	if err != nil {
		return err
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	snapshot := sheet.Clone()

	removed := 0
	sheet.Components = filter(sheet.Components, func(c schematic.Component) bool { return !drop[c.ID] })
	sheet.Wires = filter(sheet.Wires, func(w schematic.Wire) bool { return !drop[w.ID] })
	sheet.Junctions = filter(sheet.Junctions, func(j schematic.Junction) bool { return !drop[j.ID] })
	sheet.Labels = filter(sheet.Labels, func(l schematic.Label) bool { return !drop[l.ID] })
	removed += len(snapshot.Components) - len(sheet.Components)
	removed += len(snapshot.Wires) - len(sheet.Wires)
	removed += len(snapshot.Junctions) - len(sheet.Junctions)
	removed += len(snapshot.Labels) - len(sheet.Labels)
	if removed == 0 {
		*sheet = *snapshot
		return fmt.Errorf("%w: %v", ErrNotFound, ids)
	}

	e.history.Record(snapshot)
	ev := EventElementsDeleted
	if len(ids) == 1 {
		ev = EventDeleted
	}
	e.cascade(sheet, ev, nil)
	e.doc.Touch()
	e.logger.Printf("deleted %d elements", removed)
	return nil
}

// Repair reroutes blocked wires and separates overlapping nets on the
// active sheet. On a consistent sheet it changes nothing.
func (e *Editor) Repair() (Report, error) {
	sheet, err := e.sheet()
	if err != nil {
		return Report{}, err
	}
	before := sheet.Clone()
	e.cascade(sheet, EventRepair, nil)
	if e.last.Changed() {
		e.history.Record(before)
		e.doc.Touch()
	}
	return e.last, nil
}

// Undo restores the sheet as it was before the last operation
func (e *Editor) Undo() error {
	sheet, err := e.sheet()
	if err != nil {
		return err
	}
	prev, err := e.history.Undo(sheet)
	if err != nil {
		return err
	}
	*sheet = *prev
	e.doc.Touch()
	return nil
}

// Redo reapplies the last undone operation
func (e *Editor) Redo() error {
	sheet, err := e.sheet()
	if err != nil {
		return err
	}
	next, err := e.history.Redo(sheet)
	if err != nil {
		return err
	}
	*sheet = *next
	e.doc.Touch()
	return nil
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
