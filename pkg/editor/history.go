package editor

import (
	"sync"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/schematic"
)

// History owns bounded undo and redo stacks of sheet snapshots. The editor
// records a snapshot before every successful operation; restoring one
// replaces the sheet wholesale.
type History struct {
	mu    sync.Mutex
	depth int
	undo  []*schematic.Sheet
	redo  []*schematic.Sheet
}

// NewHistory creates a history keeping at most depth undo snapshots.
func NewHistory(depth int) *History {
	if depth < 1 {
		depth = 1
	}
	return &History{depth: depth}
}

// Record pushes a copy of s onto the undo stack and clears the redo stack.
func (h *History) Record(s *schematic.Sheet) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushUndo(s.Clone())
	h.redo = nil
}

// Undo pops the latest snapshot. current is saved for Redo.
func (h *History) Undo(current *schematic.Sheet) (*schematic.Sheet, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current.Clone())
	return prev, nil
}

// Redo pops the latest undone snapshot. current is saved for Undo.
func (h *History) Redo(current *schematic.Sheet) (*schematic.Sheet, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.pushUndo(current.Clone())
	return next, nil
}

// CanUndo reports whether an undo snapshot is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether a redo snapshot is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
}

func (h *History) pushUndo(s *schematic.Sheet) {
	h.undo = append(h.undo, s)
	if len(h.undo) > h.depth {
		h.undo = h.undo[len(h.undo)-h.depth:]
	}
}
