package store

import "portstudio/core"

// History manages undo/redo over document snapshots using direct struct
// storage. Each saved state is a deep copy, so later mutations never leak
// into history.
type History struct {
	states  []*core.Document
	current int
	max     int
}

// NewHistory creates a history keeping at most max states.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 50
	}
	return &History{
		states:  make([]*core.Document, 0, max),
		current: -1,
		max:     max,
	}
}

// SaveState records a new snapshot, truncating any redo tail.
func (h *History) SaveState(d *core.Document) {
	clone := d.Clone()

	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}
	h.states = append(h.states, clone)

	if len(h.states) > h.max {
		h.states = h.states[1:]
	} else {
		h.current++
	}
}

// CanUndo reports whether an earlier state exists.
func (h *History) CanUndo() bool {
	return h.current > 0
}

// CanRedo reports whether a later state exists.
func (h *History) CanRedo() bool {
	return h.current < len(h.states)-1
}

// Undo steps back one state and returns a clone of it, or nil.
func (h *History) Undo() *core.Document {
	if !h.CanUndo() {
		return nil
	}
	h.current--
	return h.states[h.current].Clone()
}

// Redo steps forward one state and returns a clone of it, or nil.
func (h *History) Redo() *core.Document {
	if !h.CanRedo() {
		return nil
	}
	h.current++
	return h.states[h.current].Clone()
}

// Reset drops all history.
func (h *History) Reset() {
	h.states = h.states[:0]
	h.current = -1
}
