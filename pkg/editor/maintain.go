package editor

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/route"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// Event is a structural change that triggers maintenance
type Event int

const (
	EventPlaced Event = iota
	EventMoved
	EventRotated
	EventMirrored
	EventGroupMoved
	EventDeleted
	EventElementsDeleted
	EventWireDrawn
	EventRepair
)

var eventNames = [...]string{
	EventPlaced:          "placed",
	EventMoved:           "moved",
	EventRotated:         "rotated",
	EventMirrored:        "mirrored",
	EventGroupMoved:      "group-moved",
	EventDeleted:         "deleted",
	EventElementsDeleted: "elements-deleted",
	EventWireDrawn:       "wire-drawn",
	EventRepair:          "repair",
}

func (ev Event) String() string {
	if ev < 0 || int(ev) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[ev]
}

// IsTransform reports whether ev moves existing components
func (ev Event) IsTransform() bool {
	switch ev {
	case EventMoved, EventRotated, EventMirrored, EventGroupMoved:
		return true
	}
	return false
}

// Report counts what one cascade changed
type Report struct {
	Event            Event
	Retargeted       int // Wires rerouted to follow a moved pin
	Translated       int // Wires moved rigidly with their components
	Materialized     int // Wires created for separated pin contacts
	Rerouted         int // Wires moved off a blocking body or pin
	Separated        int // Wires moved off a foreign net
	Pruned           int // Dangling or zero-length wires removed
	Fallbacks        int // Paths that used direct geometry
	JunctionsAdded   int
	JunctionsRemoved int
}

// Changed reports whether the cascade touched any element
func (r Report) Changed() bool {
	return r.Retargeted+r.Translated+r.Materialized+r.Rerouted+r.Separated+
		r.Pruned+r.JunctionsAdded+r.JunctionsRemoved > 0
}

// cascade runs the passes for ev in order. Each pass commits its result
// before the next one starts. It never fails: missing definitions narrow
// the scope and failed routes fall back to direct geometry.
func (e *Editor) cascade(sheet *schematic.Sheet, ev Event, before []schematic.Component) {
	rep := Report{Event: ev}
	lay := e.layout(sheet)

	if ev.IsTransform() {
		e.retarget(sheet, lay, before, &rep)
		e.materialize(sheet, lay, before, &rep)
	}
	switch ev {
	case EventPlaced, EventMoved, EventRotated, EventMirrored, EventGroupMoved, EventRepair:
		e.rerouteBlocked(sheet, lay, &rep)
		e.separateNets(sheet, lay, &rep)
	case EventWireDrawn:
		e.separateNets(sheet, lay, &rep)
	case EventDeleted, EventElementsDeleted:
		e.pruneDangling(sheet, lay, &rep)
	}
	e.refreshJunctions(sheet, lay, &rep)

	e.last = rep
	e.logger.Printf("%s: retargeted=%d translated=%d materialized=%d rerouted=%d separated=%d pruned=%d fallbacks=%d junctions=+%d/-%d",
		ev, rep.Retargeted, rep.Translated, rep.Materialized, rep.Rerouted, rep.Separated,
		rep.Pruned, rep.Fallbacks, rep.JunctionsAdded, rep.JunctionsRemoved)
}

// tipMoves maps each transformed pin's old tip to its new tip
func (e *Editor) tipMoves(sheet *schematic.Sheet, before []schematic.Component) (map[grid.Point]grid.Point, []pinMove) {
	moves := make(map[grid.Point]grid.Point)
	var ordered []pinMove
	for _, old := range before {
		cur := sheet.Component(old.ID)
		if cur == nil {
			continue
		}
		def := e.resolve(cur.LibID)
		if def == nil {
			continue
		}
		oldPins := schematic.ResolvePins(old, def)
		newPins := schematic.ResolvePins(*cur, def)
		for i := range oldPins {
			from, to := e.grid.ToGrid(oldPins[i].Tip), e.grid.ToGrid(newPins[i].Tip)
			if _, seen := moves[from]; !seen {
				moves[from] = to
			}
			ordered = append(ordered, pinMove{from: from, to: to})
		}
	}
	return moves, ordered
}

type pinMove struct {
	from, to grid.Point
}

// retarget re-routes wires ending on a transformed pin to the pin's new tip.
// Wires whose two ends move by the same offset are translated instead.
func (e *Editor) retarget(sheet *schematic.Sheet, lay *layout, before []schematic.Component, rep *Report) {
	moves, _ := e.tipMoves(sheet, before)
	if len(moves) == 0 {
		return
	}
	pl := e.planner(sheet.Wires, lay)
	out := make([]schematic.Wire, 0, len(sheet.Wires))
	for _, w := range sheet.Wires {
		path := e.grid.ToGridPath(w.Points)
		s, t := path[0], path[len(path)-1]
		ns, okS := moves[s]
		nt, okT := moves[t]
		switch {
		case !okS && !okT:
			out = append(out, w)
			continue
		case !okS:
			ns = s
		case !okT:
			nt = t
		}
		if ns == s && nt == t {
			out = append(out, w)
			continue
		}

		if okS && okT && ns.X-s.X == nt.X-t.X && ns.Y-s.Y == nt.Y-t.Y {
			d := grid.Point{X: ns.X - s.X, Y: ns.Y - s.Y}
			moved := make([]grid.Point, len(path))
			for i, p := range path {
				moved[i] = p.Add(d)
			}
			out = append(out, schematic.Wire{ID: w.ID, Points: e.grid.ToWorldPath(moved)})
			rep.Translated++
			continue
		}
		if ns == nt {
			rep.Pruned++
			continue
		}

		newPath, fellBack := pl.plan(pl.request(ns, nt, map[string]bool{w.ID: true}))
		if fellBack {
			rep.Fallbacks++
		}
		out = append(out, schematic.Wire{ID: w.ID, Points: e.grid.ToWorldPath(newPath)})
		rep.Retargeted++
	}
	sheet.Wires = out
}

// materialize creates a wire for every pin contact a transform pulled apart.
// A moved pin that touched a stationary component's pin gets one wire from
// its new tip to the old contact point, unless a wire already joins them.
// When several stationary pins shared the contact, they stay joined there
// and a single wire is created.
func (e *Editor) materialize(sheet *schematic.Sheet, lay *layout, before []schematic.Component, rep *Report) {
	_, ordered := e.tipMoves(sheet, before)
	moving := make(map[string]bool, len(before))
	for _, c := range before {
		moving[c.ID] = true
	}

	type link struct{ from, to grid.Point }
	seen := make(map[link]bool)
	var links []link
	for _, m := range ordered {
		if m.from == m.to {
			continue
		}
		l := link{from: m.to, to: m.from}
		if seen[l] || !stationaryTipAt(lay, moving, m.from) || e.joined(sheet.Wires, m.to, m.from) {
			continue
		}
		seen[l] = true
		links = append(links, l)
	}
	if len(links) == 0 {
		return
	}

	pl := e.planner(sheet.Wires, lay)
	for _, l := range links {
		path, fellBack := pl.plan(pl.request(l.from, l.to, nil))
		if fellBack {
			rep.Fallbacks++
		}
		sheet.Wires = append(sheet.Wires, schematic.Wire{ID: e.newID(), Points: e.grid.ToWorldPath(path)})
		rep.Materialized++
	}
}

func stationaryTipAt(lay *layout, moving map[string]bool, p grid.Point) bool {
	for _, i := range lay.cells.At(p) {
		part := lay.parts[i]
		if !moving[part.ID] && hasTip(part, p) {
			return true
		}
	}
	return false
}

// joined reports whether a wire runs directly between a and b
func (e *Editor) joined(wires []schematic.Wire, a, b grid.Point) bool {
	for _, w := range wires {
		s, t := e.grid.ToGrid(w.Start()), e.grid.ToGrid(w.End())
		if (s == a && t == b) || (s == b && t == a) {
			return true
		}
	}
	return false
}

// rerouteBlocked reroutes wires whose interior crosses a body or a pin they
// are not connected to. Each reroute is committed before the next wire is
// checked.
func (e *Editor) rerouteBlocked(sheet *schematic.Sheet, lay *layout, rep *Report) {
	drop := make(map[string]bool)
	for i := range sheet.Wires {
		w := sheet.Wires[i]
		if drop[w.ID] {
			continue
		}
		pl := e.planner(sheet.Wires, lay)
		if len(pl.violations(w)) == 0 {
			continue
		}
		path, fellBack := pl.plan(pl.rerouteRequest(w))
		if fellBack {
			rep.Fallbacks++
		}
		if samePath(e.grid.ToGridPath(w.Points), path) {
			continue
		}
		e.replacePath(sheet, lay, i, path, drop, rep)
		rep.Rerouted++
	}
	sheet.Wires = withoutWires(sheet.Wires, drop)
}

// separateNets walks the wires in order and reroutes any wire that shares
// a grid edge with an earlier wire of another net. Reroutes are committed
// one at a time so later wires avoid earlier results.
func (e *Editor) separateNets(sheet *schematic.Sheet, lay *layout, rep *Report) {
	nets := route.NetIDs(e.grid, sheet.Wires)
	owner := make(map[grid.Edge]int)
	drop := make(map[string]bool)
	for i := range sheet.Wires {
		w := sheet.Wires[i]
		if drop[w.ID] {
			continue
		}
		edges := grid.Edges(e.grid.ToGridPath(w.Points))
		conflict := false
		for _, edge := range edges {
			if n, ok := owner[edge]; ok && n != nets[w.ID] {
				conflict = true
				break
			}
		}
		if conflict {
			pl := e.planner(sheet.Wires, lay)
			path, fellBack := pl.plan(pl.rerouteRequest(w))
			if fellBack {
				rep.Fallbacks++
			}
			if !samePath(e.grid.ToGridPath(w.Points), path) {
				e.replacePath(sheet, lay, i, path, drop, rep)
				edges = grid.Edges(path)
				rep.Separated++
			}
		}
		for _, edge := range edges {
			if _, ok := owner[edge]; !ok {
				owner[edge] = nets[w.ID]
			}
		}
	}
	sheet.Wires = withoutWires(sheet.Wires, drop)
}

// replacePath commits a new path for the wire at index host and moves every
// wire end that tapped the old interior onto the new path. Ends on a pin tip
// stay. Tap wires that collapse to a point are added to drop.
func (e *Editor) replacePath(sheet *schematic.Sheet, lay *layout, host int, path []grid.Point, drop map[string]bool, rep *Report) {
	taps, interior := e.taps(sheet.Wires, host)
	hostID := sheet.Wires[host].ID
	sheet.Wires[host] = schematic.Wire{ID: hostID, Points: e.grid.ToWorldPath(path)}
	if len(taps) == 0 {
		return
	}

	cells := grid.Cells(path)
	on := route.CellSet{}
	on.Add(cells...)
	for _, i := range taps {
		w := sheet.Wires[i]
		old := e.grid.ToGridPath(w.Points)
		s, t := old[0], old[len(old)-1]
		ns, nt := s, t
		if interior.Has(s) && !on.Has(s) && !lay.tips.Has(s) {
			ns = nearestCell(cells, s)
		}
		if interior.Has(t) && !on.Has(t) && !lay.tips.Has(t) {
			nt = nearestCell(cells, t)
		}
		if ns == s && nt == t {
			continue
		}
		if ns == nt {
			drop[w.ID] = true
			rep.Pruned++
			continue
		}
		pl := e.planner(sheet.Wires, lay)
		newPath, fellBack := pl.plan(pl.request(ns, nt, map[string]bool{w.ID: true}))
		if fellBack {
			rep.Fallbacks++
		}
		sheet.Wires[i] = schematic.Wire{ID: w.ID, Points: e.grid.ToWorldPath(newPath)}
		e.logger.Printf("reattached %s to %s", w.ID, hostID)
		rep.Retargeted++
	}
}

// taps returns the indices of wires with an end on the interior of the
// wire at index host, along with the interior cells.
func (e *Editor) taps(wires []schematic.Wire, host int) ([]int, route.CellSet) {
	cells := grid.Cells(e.grid.ToGridPath(wires[host].Points))
	if len(cells) < 3 {
		return nil, nil
	}
	interior := route.CellSet{}
	interior.Add(cells[1 : len(cells)-1]...)
	var out []int
	for i, w := range wires {
		if i == host || len(w.Points) < 2 {
			continue
		}
		if interior.Has(e.grid.ToGrid(w.Start())) || interior.Has(e.grid.ToGrid(w.End())) {
			out = append(out, i)
		}
	}
	return out, interior
}

// nearestCell returns the cell of cells closest to p by Manhattan
// distance, the earliest one on ties.
func nearestCell(cells []grid.Point, p grid.Point) grid.Point {
	best, bestD := cells[0], -1
	for _, c := range cells {
		d := grid.Manhattan(c, p)
		if bestD < 0 || d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

func withoutWires(wires []schematic.Wire, drop map[string]bool) []schematic.Wire {
	if len(drop) == 0 {
		return wires
	}
	kept := wires[:0]
	for _, w := range wires {
		if !drop[w.ID] {
			kept = append(kept, w)
		}
	}
	return kept
}

// pruneDangling removes wires with an unconnected end until none is left,
// then drops junctions that no longer touch a wire.
func (e *Editor) pruneDangling(sheet *schematic.Sheet, lay *layout, rep *Report) {
	for {
		idx := e.wireIndex(sheet.Wires)
		anchors := e.anchors(sheet, lay, idx)

		kept := sheet.Wires[:0]
		removed := 0
		for i, w := range sheet.Wires {
			s, t := e.grid.ToGrid(w.Start()), e.grid.ToGrid(w.End())
			if e.anchored(s, i, idx, anchors) && e.anchored(t, i, idx, anchors) {
				kept = append(kept, w)
				continue
			}
			e.logger.Printf("pruning dangling wire %s", w.ID)
			removed++
		}
		sheet.Wires = kept
		rep.Pruned += removed
		if removed == 0 {
			break
		}
	}
	e.dropLooseJunctions(sheet, rep)
}

// anchors returns the cells that hold a wire end without another wire:
// pin tips and labels. A junction only counts while two wires touch it.
func (e *Editor) anchors(sheet *schematic.Sheet, lay *layout, idx *route.CellIndex) route.CellSet {
	out := route.CellSet{}
	for p := range lay.tips {
		out.Add(p)
	}
	for _, j := range sheet.Junctions {
		if p := e.grid.ToGrid(j.Position); len(idx.At(p)) >= 2 {
			out.Add(p)
		}
	}
	for _, l := range sheet.Labels {
		out.Add(e.grid.ToGrid(l.Position))
	}
	return out
}

func (e *Editor) anchored(p grid.Point, self int, idx *route.CellIndex, anchors route.CellSet) bool {
	if anchors.Has(p) {
		return true
	}
	for _, j := range idx.At(p) {
		if j != self {
			return true
		}
	}
	return false
}

func (e *Editor) wireIndex(wires []schematic.Wire) *route.CellIndex {
	idx := route.NewCellIndex()
	for i, w := range wires {
		idx.AddPath(i, e.grid.ToGridPath(w.Points))
	}
	return idx
}

func (e *Editor) dropLooseJunctions(sheet *schematic.Sheet, rep *Report) {
	idx := e.wireIndex(sheet.Wires)
	kept := sheet.Junctions[:0]
	for _, j := range sheet.Junctions {
		if len(idx.At(e.grid.ToGrid(j.Position))) > 0 {
			kept = append(kept, j)
			continue
		}
		rep.JunctionsRemoved++
	}
	sheet.Junctions = kept
}

// refreshJunctions adds a junction at every wire end where three or more
// connections meet and removes junctions where fewer than three meet. A
// wire passing through a point counts twice, a wire end or pin tip once.
func (e *Editor) refreshJunctions(sheet *schematic.Sheet, lay *layout, rep *Report) {
	degree := make(map[grid.Point]int)
	var ends []grid.Point
	for _, w := range sheet.Wires {
		cells := grid.Cells(e.grid.ToGridPath(w.Points))
		for i, c := range cells {
			if i == 0 || i == len(cells)-1 {
				degree[c]++
				ends = append(ends, c)
				continue
			}
			degree[c] += 2
		}
	}
	for p := range lay.tips {
		if degree[p] > 0 {
			degree[p]++
		}
	}

	have := route.CellSet{}
	kept := sheet.Junctions[:0]
	for _, j := range sheet.Junctions {
		p := e.grid.ToGrid(j.Position)
		if degree[p] < 3 || have.Has(p) {
			rep.JunctionsRemoved++
			continue
		}
		have.Add(p)
		kept = append(kept, j)
	}
	sheet.Junctions = kept

	for _, p := range ends {
		if degree[p] < 3 || have.Has(p) {
			continue
		}
		have.Add(p)
		sheet.Junctions = append(sheet.Junctions, schematic.Junction{ID: e.newID(), Position: e.grid.ToWorld(p)})
		rep.JunctionsAdded++
	}
}

func samePath(a, b []grid.Point) bool {
	a, b = grid.Simplify(a), grid.Simplify(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
