// Package route plans orthogonal wire paths on the schematic grid. It
// derives obstacles from placed components, tracks which grid edges are
// already used by wires and answers net-sameness queries.
package route

import (
	"container/heap"
	"errors"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
)

// ErrNoRoute is returned when the search space is exhausted or the
// expansion bound is reached.
var ErrNoRoute = errors.New("route: no path found")

// Request is one routing problem
type Request struct {
	From, To  grid.Point
	Obstacles []Obstacle
	Occupied  EdgeSet // Foreign-net edges, penalized
	SameNet   EdgeSet // Own-net edges, free
	Allowed   CellSet // Pin corridors exempt from obstacles
	Blocked   CellSet // Always impassable
}

// Router is an A* path finder for 4-directional Manhattan paths
type Router struct {
	cfg Config
}

// NewRouter creates a router. The config is validated first.
func NewRouter(cfg Config) *Router {
	_ = cfg.Validate()
	return &Router{cfg: cfg}
}

// Config returns the router's effective configuration
func (r *Router) Config() Config {
	return r.cfg
}

const noDir = 4

// Right, down, left, up. The order fixes tie-breaking between equal paths.
var (
	dirX = [4]int{1, 0, -1, 0}
	dirY = [4]int{0, 1, 0, -1}
)

type state struct {
	p   grid.Point
	dir int
}

// Route finds a minimum cost path from req.From to req.To. The returned
// polyline holds only the endpoints and the corners.
func (r *Router) Route(req Request) ([]grid.Point, error) {
	if req.From == req.To {
		return []grid.Point{req.From, req.To}, nil
	}

	window := SearchWindow(req.From, req.To, req.Obstacles, r.cfg.Margin)
	passable := r.passability(req, window)

	start := state{p: req.From, dir: noDir}
	gScore := map[state]int{start: 0}
	cameFrom := make(map[state]state)
	closed := make(map[state]bool)

	pq := &searchQueue{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &searchItem{s: start, f: r.heuristic(req.From, req.To), h: r.heuristic(req.From, req.To), seq: seq})

	expansions := 0
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*searchItem)
		cur := item.s
		if closed[cur] {
			continue
		}
		if cur.p == req.To {
			return grid.Simplify(reconstruct(cameFrom, cur)), nil
		}
		closed[cur] = true

		expansions++
		if expansions > r.cfg.MaxExpansions {
			return nil, ErrNoRoute
		}

		curG := gScore[cur]
		for d := 0; d < 4; d++ {
			next := grid.Point{X: cur.p.X + dirX[d], Y: cur.p.Y + dirY[d]}
			if !passable(next) {
				continue
			}
			ns := state{p: next, dir: d}
			if closed[ns] {
				continue
			}

			cost := r.cfg.StepCost
			if req.Occupied.Has(grid.NewEdge(cur.p, next)) {
				cost += r.cfg.OverlapPenalty
			}
			if cur.dir != noDir && cur.dir != d {
				cost += r.cfg.BendPenalty
			}

			tentative := curG + cost
			if prev, ok := gScore[ns]; ok && tentative >= prev {
				continue
			}
			gScore[ns] = tentative
			cameFrom[ns] = cur
			h := r.heuristic(next, req.To)
			seq++
			heap.Push(pq, &searchItem{s: ns, f: tentative + h, h: h, seq: seq})
		}
	}

	return nil, ErrNoRoute
}

// Passable reports whether the router would enter p for this request,
// using the same cell rules as Route without the search window limit.
// Endpoints are always passable.
func Passable(req Request) func(grid.Point) bool {
	return func(p grid.Point) bool {
		if p == req.From || p == req.To {
			return true
		}
		return !req.Blocked.Has(p) && !inObstacle(req, p)
	}
}

// passability builds a memoized cell test restricted to window
func (r *Router) passability(req Request, window grid.Box) func(grid.Point) bool {
	base := Passable(req)
	memo := make(map[grid.Point]bool)
	return func(p grid.Point) bool {
		if p == req.From || p == req.To {
			return true
		}
		if !window.Contains(p) {
			return false
		}
		if v, ok := memo[p]; ok {
			return v
		}
		ok := base(p)
		memo[p] = ok
		return ok
	}
}

func inObstacle(req Request, p grid.Point) bool {
	if req.Allowed.Has(p) {
		return false
	}
	for _, o := range req.Obstacles {
		if o.Box.Contains(p) {
			return true
		}
	}
	return false
}

func (r *Router) heuristic(a, b grid.Point) int {
	return grid.Manhattan(a, b) * r.cfg.StepCost
}

func reconstruct(cameFrom map[state]state, end state) []grid.Point {
	var path []grid.Point
	s := end
	for {
		path = append(path, s.p)
		prev, ok := cameFrom[s]
		if !ok {
			break
		}
		s = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// searchItem is a node in the A* priority queue.
type searchItem struct {
	s     state
	f     int
	h     int
	seq   int
	index int
}

// searchQueue implements heap.Interface for A* search. Ties on f prefer the
// node closer to the goal, then the one pushed first.
type searchQueue []*searchItem

func (pq searchQueue) Len() int { return len(pq) }
func (pq searchQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	if pq[i].h != pq[j].h {
		return pq[i].h < pq[j].h
	}
	return pq[i].seq < pq[j].seq
}
func (pq searchQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *searchQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*searchItem)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *searchQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}
