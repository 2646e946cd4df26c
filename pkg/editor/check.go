package editor

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/grid"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/route"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// IssueKind classifies a consistency problem
type IssueKind string

const (
	IssueDangling   IssueKind = "dangling"    // Wire end touches nothing
	IssueNetOverlap IssueKind = "net-overlap" // Wire shares an edge with another net
	IssueBlocked    IssueKind = "blocked"     // Wire crosses a body or foreign pin
	IssueCollision  IssueKind = "collision"   // Components overlap
)

// Issue is one problem found by Check
type Issue struct {
	Kind    IssueKind
	Element string
	At      schematic.Position
	Detail  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s at (%g, %g): %s", i.Kind, i.Element, i.At.X, i.At.Y, i.Detail)
}

// Check reports every wire and component on the active sheet that breaks
// the connectivity rules. It does not modify the sheet.
func (e *Editor) Check() ([]Issue, error) {
	sheet, err := e.sheet()
	if err != nil {
		return nil, err
	}
	lay := e.layout(sheet)
	var issues []Issue

	for i, part := range lay.parts {
		others := make(map[string]bool)
		for _, p := range lay.parts[:i+1] {
			others[p.ID] = true
		}
		if err := lay.collision(others, []route.Part{part}); err != nil {
			issues = append(issues, Issue{Kind: IssueCollision, Element: part.ID, Detail: err.Error()})
		}
	}

	idx := e.wireIndex(sheet.Wires)
	anchors := e.anchors(sheet, lay, idx)

	pl := e.planner(sheet.Wires, lay)
	nets := route.NetIDs(e.grid, sheet.Wires)
	owner := make(map[grid.Edge]string)
	for i, w := range sheet.Wires {
		for _, end := range []schematic.Position{w.Start(), w.End()} {
			if !e.anchored(e.grid.ToGrid(end), i, idx, anchors) {
				issues = append(issues, Issue{Kind: IssueDangling, Element: w.ID, At: end, Detail: "unconnected end"})
			}
		}
		if v := pl.violations(w); len(v) > 0 {
			issues = append(issues, Issue{Kind: IssueBlocked, Element: w.ID, At: e.grid.ToWorld(v[0]),
				Detail: fmt.Sprintf("%d cells cross a body or foreign pin", len(v))})
		}
		for _, edge := range grid.Edges(e.grid.ToGridPath(w.Points)) {
			other, ok := owner[edge]
			if !ok {
				owner[edge] = w.ID
				continue
			}
			if nets[other] != nets[w.ID] {
				issues = append(issues, Issue{Kind: IssueNetOverlap, Element: w.ID, At: e.grid.ToWorld(edge.A),
					Detail: "shares an edge with " + other})
				break
			}
		}
	}
	return issues, nil
}
