// Package store owns the authoritative port list and selection for the
// currently loaded symbol. All mutations flow through its methods so that
// index validity, rounding, and lock checks are enforced in one place.
package store

import (
	"fmt"
	"sort"

	"portstudio/core"
	"portstudio/geometry"
)

// Store is the in-memory port collection plus selection for one symbol.
// It is single-threaded: all mutations happen on the event thread.
type Store struct {
	doc     *core.Document
	primary int          // selected port index driving the field editor, -1 for none
	members map[int]bool // multi-select set; primary is a member when non-empty

	strict     bool
	history    *History
	histPaused bool

	onChange []func()
	onDelete []func(deleted []int)
}

// Option configures a Store.
type Option func(*Store)

// Strict makes out-of-range indices panic instead of no-op.
// Used in tests and development builds; production stores absorb them.
func Strict() Option {
	return func(s *Store) { s.strict = true }
}

// WithHistoryLimit bounds the undo history depth.
func WithHistoryLimit(max int) Option {
	return func(s *Store) { s.history = NewHistory(max) }
}

// New creates a store owning the given document.
func New(doc *core.Document, opts ...Option) *Store {
	s := &Store{
		doc:     doc,
		primary: -1,
		members: make(map[int]bool),
		history: NewHistory(200),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history.SaveState(doc)
	return s
}

// Replace swaps in a new document wholesale, as happens when a different
// symbol loads. Selection and history are reset; there is no cross-symbol
// port identity.
func (s *Store) Replace(doc *core.Document) {
	s.doc = doc
	s.primary = -1
	s.members = make(map[int]bool)
	s.history.Reset()
	s.history.SaveState(doc)
	s.notify()
}

// OnChange registers a callback fired after every mutating call.
func (s *Store) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

// OnDelete registers a callback fired after ports are removed. The callback
// receives the removed indices (ascending, pre-removal numbering) so
// borrowers of indices can remap or cancel.
func (s *Store) OnDelete(fn func(deleted []int)) {
	s.onDelete = append(s.onDelete, fn)
}

func (s *Store) notify() {
	for _, fn := range s.onChange {
		fn()
	}
}

// check validates an index against the current port list.
func (s *Store) check(idx int) bool {
	if idx >= 0 && idx < len(s.doc.Ports) {
		return true
	}
	if s.strict {
		panic(fmt.Sprintf("store: index %d out of range (len %d)", idx, len(s.doc.Ports)))
	}
	return false
}

// Len returns the number of ports.
func (s *Store) Len() int { return len(s.doc.Ports) }

// VW returns the document width.
func (s *Store) VW() float64 { return s.doc.VW }

// VH returns the document height.
func (s *Store) VH() float64 { return s.doc.VH }

// Port returns the port at idx.
func (s *Store) Port(idx int) (core.Port, bool) {
	if idx < 0 || idx >= len(s.doc.Ports) {
		return core.Port{}, false
	}
	return s.doc.Ports[idx], true
}

// Ports returns a copy of the ordered port list.
func (s *Store) Ports() []core.Port {
	out := make([]core.Port, len(s.doc.Ports))
	copy(out, s.doc.Ports)
	return out
}

// Primary returns the primary selection index, -1 for none.
func (s *Store) Primary() int { return s.primary }

// Members returns the multi-select set in ascending order.
func (s *Store) Members() []int {
	out := make([]int, 0, len(s.members))
	for i := range s.members {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// IsSelected reports whether idx is in the selection.
func (s *Store) IsSelected(idx int) bool { return s.members[idx] }

// Add normalizes and appends a port draft, returning its index.
// The new port becomes the sole selection. Add never fails.
func (s *Store) Add(draft core.Port) int {
	if draft.Geometry == nil {
		draft.Geometry = core.Point{X: s.doc.VW / 2, Y: s.doc.VH / 2}
	}
	draft.Geometry = roundGeometry(draft.Geometry)
	if draft.ID == "" {
		draft.ID = draft.Type.String()
	}
	s.doc.Ports = append(s.doc.Ports, draft)
	idx := len(s.doc.Ports) - 1
	s.primary = idx
	s.members = map[int]bool{idx: true}
	s.commit()
	return idx
}

// Delete removes the given indices. Removal happens in descending index
// order so pending indices stay valid. The primary is recomputed to the
// nearest valid index (clamped) or -1 if the store empties; surviving
// member indices are remapped.
func (s *Store) Delete(indices []int) {
	deleted := make([]int, 0, len(indices))
	seen := make(map[int]bool)
	for _, idx := range indices {
		if !s.check(idx) || seen[idx] {
			continue
		}
		seen[idx] = true
		deleted = append(deleted, idx)
	}
	if len(deleted) == 0 {
		return
	}
	sort.Sort(sort.Reverse(sort.IntSlice(deleted)))
	for _, idx := range deleted {
		s.doc.Ports = append(s.doc.Ports[:idx], s.doc.Ports[idx+1:]...)
	}
	sort.Ints(deleted)

	newMembers := make(map[int]bool)
	for m := range s.members {
		if n := RemapIndex(m, deleted); n >= 0 {
			newMembers[n] = true
		}
	}
	if s.primary >= 0 {
		n := RemapIndex(s.primary, deleted)
		if n < 0 {
			// The primary itself was deleted: clamp its old slot.
			n = s.primary - countBelow(s.primary, deleted)
			if n > len(s.doc.Ports)-1 {
				n = len(s.doc.Ports) - 1
			}
		}
		s.primary = n
	}
	if s.primary >= 0 {
		newMembers[s.primary] = true
	} else {
		newMembers = make(map[int]bool)
	}
	s.members = newMembers

	s.commit()
	for _, fn := range s.onDelete {
		fn(deleted)
	}
}

// PortUpdate is a shallow partial update of a port. Nil fields are left
// untouched.
type PortUpdate struct {
	ID       *string
	Type     *core.PortType
	Locked   *bool
	Geometry core.Geometry
}

// Update shallow-merges the partial onto the port at idx. Geometry changes
// are rejected while the port is locked; numeric fields are rounded to two
// decimals on write. Degenerate zone geometry is rejected and the prior
// geometry retained. An update that changes nothing leaves history and
// listeners untouched.
func (s *Store) Update(idx int, upd PortUpdate) {
	if !s.check(idx) {
		return
	}
	p := &s.doc.Ports[idx]
	changed := false
	if upd.ID != nil && *upd.ID != p.ID {
		p.ID = *upd.ID
		changed = true
	}
	if upd.Type != nil && *upd.Type != p.Type {
		p.Type = *upd.Type
		changed = true
	}
	if upd.Locked != nil && *upd.Locked != p.Locked {
		p.Locked = *upd.Locked
		changed = true
	}
	if upd.Geometry != nil && !p.Locked {
		if g, ok := validGeometry(upd.Geometry); ok && g != p.Geometry {
			p.Geometry = g
			changed = true
		}
	}
	if changed {
		s.commit()
	}
}

// Select updates the selection. Non-additive selection replaces it with
// {idx}; additive selection toggles idx's membership and moves the primary.
func (s *Store) Select(idx int, additive bool) {
	if !s.check(idx) {
		return
	}
	if !additive {
		s.primary = idx
		s.members = map[int]bool{idx: true}
		s.notify()
		return
	}
	if s.members[idx] {
		delete(s.members, idx)
		// The primary must stay inside the member set; fall back to the
		// nearest remaining member, or clear entirely.
		s.primary = nearestMember(s.members, idx)
	} else {
		s.members[idx] = true
		s.primary = idx
	}
	s.notify()
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	if s.primary == -1 && len(s.members) == 0 {
		return
	}
	s.primary = -1
	s.members = make(map[int]bool)
	s.notify()
}

// ZoneFraction is the relative size of the rectangle created when a point
// port converts to a zone: 0.2·vw by 0.2·vh, centered on the point.
const ZoneFraction = 0.2

// ConvertGeometry toggles the port at idx between Point and Zone
// representation. Locked ports are left untouched.
func (s *Store) ConvertGeometry(idx int) {
	if !s.check(idx) {
		return
	}
	p := &s.doc.Ports[idx]
	if p.Locked {
		return
	}
	switch g := p.Geometry.(type) {
	case core.Point:
		w := ZoneFraction * s.doc.VW
		h := ZoneFraction * s.doc.VH
		p.Geometry = roundGeometry(core.Zone{
			X: g.X - w/2, Y: g.Y - h/2, Width: w, Height: h,
		})
	case core.Zone:
		p.Geometry = roundGeometry(g.Center())
	}
	s.commit()
}

// Document returns a deep copy of the current document, for serialization.
func (s *Store) Document() *core.Document {
	return s.doc.Clone()
}

// commit records a history snapshot and fires the change notification.
func (s *Store) commit() {
	if !s.histPaused {
		s.history.SaveState(s.doc)
	}
	s.notify()
}

// PauseHistory suspends snapshotting, so a multi-event gesture (a drag)
// lands in history as a single state.
func (s *Store) PauseHistory() { s.histPaused = true }

// ResumeHistory re-enables snapshotting and records the current state.
func (s *Store) ResumeHistory() {
	if !s.histPaused {
		return
	}
	s.histPaused = false
	s.history.SaveState(s.doc)
}

// Undo restores the previous document snapshot, if any.
// Selection is clamped against the restored port list.
func (s *Store) Undo() bool {
	doc := s.history.Undo()
	if doc == nil {
		return false
	}
	s.restore(doc)
	return true
}

// Redo re-applies an undone snapshot, if any.
func (s *Store) Redo() bool {
	doc := s.history.Redo()
	if doc == nil {
		return false
	}
	s.restore(doc)
	return true
}

func (s *Store) restore(doc *core.Document) {
	s.doc = doc
	if s.primary >= len(doc.Ports) {
		s.primary = len(doc.Ports) - 1
	}
	if s.primary >= 0 {
		s.members = map[int]bool{s.primary: true}
	} else {
		s.members = make(map[int]bool)
	}
	s.notify()
}

// RemapIndex translates a pre-deletion index to its post-deletion value,
// or -1 if the index itself was deleted. deleted must be ascending.
func RemapIndex(idx int, deleted []int) int {
	shift := 0
	for _, d := range deleted {
		if d == idx {
			return -1
		}
		if d < idx {
			shift++
		}
	}
	return idx - shift
}

func countBelow(idx int, deleted []int) int {
	n := 0
	for _, d := range deleted {
		if d < idx {
			n++
		}
	}
	return n
}

func nearestMember(members map[int]bool, idx int) int {
	if len(members) == 0 {
		return -1
	}
	best, bestDist := -1, -1
	for m := range members {
		d := m - idx
		if d < 0 {
			d = -d
		}
		if best == -1 || d < bestDist || (d == bestDist && m < best) {
			best, bestDist = m, d
		}
	}
	return best
}

func roundGeometry(g core.Geometry) core.Geometry {
	switch v := g.(type) {
	case core.Point:
		return core.Point{X: geometry.Round2(v.X), Y: geometry.Round2(v.Y)}
	case core.Zone:
		return core.Zone{
			X:      geometry.Round2(v.X),
			Y:      geometry.Round2(v.Y),
			Width:  geometry.Round2(v.Width),
			Height: geometry.Round2(v.Height),
		}
	default:
		return g
	}
}

func validGeometry(g core.Geometry) (core.Geometry, bool) {
	g = roundGeometry(g)
	if z, ok := g.(core.Zone); ok && (z.Width <= 0 || z.Height <= 0) {
		return nil, false
	}
	return g, true
}
