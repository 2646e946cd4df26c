package editor

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/route"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// planner builds routing requests against one snapshot of the wires
type planner struct {
	e     *Editor
	lay   *layout
	wires []schematic.Wire
}

func (e *Editor) planner(wires []schematic.Wire, lay *layout) *planner {
	return &planner{e: e, lay: lay, wires: wires}
}

// request assembles the routing problem for a path between from and to.
// Wires in replacing are treated as absent.
func (p *planner) request(from, to grid.Point, replacing map[string]bool) route.Request {
	candidates := make([]schematic.Wire, 0, len(p.wires))
	for _, w := range p.wires {
		if !replacing[w.ID] {
			candidates = append(candidates, w)
		}
	}
	return p.build(from, to, replacing, candidates)
}

// rerouteRequest is the request for replacing w in place. The net is taken
// from the sheet as it stands, so wires tapping into w stay same-net.
func (p *planner) rerouteRequest(w schematic.Wire) route.Request {
	path := p.e.grid.ToGridPath(w.Points)
	return p.build(path[0], path[len(path)-1], map[string]bool{w.ID: true}, p.wires)
}

func (p *planner) build(from, to grid.Point, replacing map[string]bool, netWires []schematic.Wire) route.Request {
	g := p.e.grid
	sameNet := route.SameNetWireIDs(g, []schematic.Position{g.ToWorld(from), g.ToWorld(to)}, netWires)
	occ := route.BuildOccupancy(g, p.wires, sameNet, replacing)

	sameCells := occ.SameNetCells
	sameCells.Add(from, to)
	window := route.SearchWindow(from, to, p.lay.obstacles, p.e.cfg.Route.Margin)
	blocked := route.BlockedCells(p.lay.parts, window, sameCells)
	for c := range occ.ForeignEnds {
		blocked.Add(c)
	}
	delete(blocked, from)
	delete(blocked, to)

	if n := len(occ.SameNet); n > 0 {
		p.e.logger.Printf("route %v -> %v: %d same-net edges exempt", from, to, n)
	}

	return route.Request{
		From:      from,
		To:        to,
		Obstacles: p.lay.obstacles,
		Occupied:  occ.Occupied,
		SameNet:   occ.SameNet,
		Allowed:   p.lay.allowed,
		Blocked:   blocked,
	}
}

// checkRequest is rerouteRequest with the bodies of components connected at
// either end left out, for testing whether an existing path is acceptable.
func (p *planner) checkRequest(w schematic.Wire) route.Request {
	req := p.rerouteRequest(w)
	connected := p.lay.connectedTo(req.From, req.To)
	if len(connected) == 0 {
		return req
	}
	obstacles := make([]route.Obstacle, 0, len(req.Obstacles))
	for _, o := range req.Obstacles {
		if !connected[o.ComponentID] {
			obstacles = append(obstacles, o)
		}
	}
	req.Obstacles = obstacles
	return req
}

// plan routes req, falling back to direct geometry when the router fails.
// The second result reports whether the fallback was used.
func (p *planner) plan(req route.Request) ([]grid.Point, bool) {
	path, err := p.e.router.Route(req)
	if err == nil {
		return path, false
	}
	p.e.logger.Printf("route %v -> %v: %v, using direct path", req.From, req.To, err)
	return route.Fallback(req.From, req.To, route.Passable(req)), true
}

// violations returns the interior cells of w that its own request forbids
func (p *planner) violations(w schematic.Wire) []grid.Point {
	req := p.checkRequest(w)
	return route.Violations(p.e.grid.ToGridPath(w.Points), route.Passable(req))
}
