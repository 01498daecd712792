// Package controller is the interaction state machine of the annotation
// engine. It owns the single active mode, borrows port indices from the
// store (always re-resolving by index, never holding a port by value across
// a pointer-move boundary), and routes pointer and key events into store
// mutations.
package controller

import (
	"fmt"

	"portstudio/core"
	"portstudio/geometry"
	"portstudio/grid"
	"portstudio/store"
	"portstudio/viewport"
)

// MinZoneEdge is the minimum edge length of a zone, in document units.
// Corner resizes that would shrink either dimension below it are rejected.
const MinZoneEdge = 1.0

// Controller drives the annotation engine from pointer/keyboard events.
// Single-threaded: every event fully applies before the next begins.
type Controller struct {
	store *store.Store
	view  *viewport.Viewport
	grid  *grid.Grid

	mode        Mode
	axisLock    AxisLock
	defaultType core.PortType
	minEdge     float64
}

// New wires a controller to its store, viewport and grid. The controller
// subscribes to store deletions so an armed mode referencing a deleted port
// is cancelled uniformly.
func New(st *store.Store, vp *viewport.Viewport, g *grid.Grid) *Controller {
	c := &Controller{
		store:       st,
		view:        vp,
		grid:        g,
		mode:        Idle{},
		axisLock:    LockFree,
		defaultType: core.Process,
		minEdge:     MinZoneEdge,
	}
	st.OnDelete(c.handleDeleted)
	st.OnChange(c.refreshPreview)
	return c
}

// Mode returns the active interaction mode.
func (c *Controller) Mode() Mode { return c.mode }

// AxisLock returns the current point-drag constraint.
func (c *Controller) AxisLock() AxisLock { return c.axisLock }

// SetAxisLock sets the point-drag constraint.
func (c *Controller) SetAxisLock(l AxisLock) { c.axisLock = l }

// DefaultType returns the port type used for newly placed ports.
func (c *Controller) DefaultType() core.PortType { return c.defaultType }

// SetDefaultType sets the port type used for newly placed ports.
func (c *Controller) SetDefaultType(t core.PortType) { c.defaultType = t }

// SetMinZoneEdge overrides the minimum zone edge length. Values that
// are not positive are ignored.
func (c *Controller) SetMinZoneEdge(v float64) {
	if v > 0 {
		c.minEdge = v
	}
}

// HandleRadius is the corner hit-test radius in document units,
// proportional to the symbol size like the marker radius.
func (c *Controller) HandleRadius() float64 {
	return geometry.Max(2, 0.04*geometry.Min(c.store.VW(), c.store.VH()))
}

// OnPointerDown handles a press at screen position (sx, sy). target is the
// index of the port under the pointer, or -1 for bare canvas. While a
// midpoint or axis-match mode is armed the click routes into that mode's
// handler instead of normal selection and dragging.
func (c *Controller) OnPointerDown(sx, sy float64, target int) {
	switch m := c.mode.(type) {
	case MidpointStep1:
		if target >= 0 {
			c.mode = MidpointStep2{RefA: target}
		}
		return
	case MidpointStep2:
		if target >= 0 && target != m.RefA {
			c.mode = MidpointStep3{RefA: m.RefA, RefB: target, Preview: c.previewFor(m.RefA, target)}
		}
		return
	case MidpointStep3:
		c.confirmMidpoint(m)
		return
	case AxisMatch:
		if target >= 0 && target != m.Source {
			c.applyAxisMatch(m, target)
			c.mode = Idle{}
		}
		return
	}

	if target < 0 {
		c.store.ClearSelection()
		return
	}
	c.store.Select(target, false)
	p, ok := c.store.Port(target)
	if !ok || p.Locked {
		// Locked ports select but never enter a drag.
		return
	}
	doc := c.view.ToDocument(sx, sy)
	switch g := p.Geometry.(type) {
	case core.Point:
		c.store.PauseHistory()
		c.mode = PointDrag{Index: target, Start: g}
	case core.Zone:
		c.store.PauseHistory()
		c.mode = ZoneDrag{Index: target, Op: c.zoneOpFor(g, doc), Start: g, Anchor: doc}
	}
}

// OnPointerMove applies the active drag, if any, at screen position
// (sx, sy). Moves are processed in arrival order and each fully applies
// before the next.
func (c *Controller) OnPointerMove(sx, sy float64) {
	switch m := c.mode.(type) {
	case PointDrag:
		p, ok := c.store.Port(m.Index)
		if !ok || p.Locked {
			c.endDrag()
			return
		}
		pt, isPoint := p.Geometry.(core.Point)
		if !isPoint {
			c.endDrag()
			return
		}
		doc := c.view.ToDocument(sx, sy)
		nx, ny := pt.X, pt.Y
		if c.axisLock != LockX {
			nx = c.grid.Snap(doc.X)
		}
		if c.axisLock != LockY {
			ny = c.grid.Snap(doc.Y)
		}
		c.store.Update(m.Index, store.PortUpdate{Geometry: core.Point{X: nx, Y: ny}})

	case ZoneDrag:
		p, ok := c.store.Port(m.Index)
		if !ok || p.Locked {
			c.endDrag()
			return
		}
		if _, isZone := p.Geometry.(core.Zone); !isZone {
			c.endDrag()
			return
		}
		doc := c.view.ToDocument(sx, sy)
		z, ok := c.resizeZone(m, doc)
		if !ok {
			// Rejected update: keep the prior geometry.
			return
		}
		c.store.Update(m.Index, store.PortUpdate{Geometry: z})
	}
}

// OnPointerUp ends any in-progress drag.
func (c *Controller) OnPointerUp() {
	switch c.mode.(type) {
	case PointDrag, ZoneDrag:
		c.endDrag()
	}
}

// Key is a key event the controller understands.
type Key int

const (
	KeyEscape Key = iota
	KeyEnter
	KeyDelete
)

// OnKeyDown handles a key event. Escape is the universal cancel and is
// checked ahead of everything else.
func (c *Controller) OnKeyDown(k Key) {
	if k == KeyEscape {
		c.CancelMode()
		return
	}
	switch k {
	case KeyEnter:
		if m, ok := c.mode.(MidpointStep3); ok {
			c.confirmMidpoint(m)
		}
	case KeyDelete:
		c.DeleteSelection()
	}
}

// ArmMidpoint enters the guided midpoint-placement workflow.
func (c *Controller) ArmMidpoint() {
	c.abortDrag()
	c.mode = MidpointStep1{}
}

// ArmAxisMatch arms coordinate matching for the currently selected port.
// Without a selection it does nothing.
func (c *Controller) ArmAxisMatch(axis Axis) {
	src := c.store.Primary()
	if src < 0 {
		return
	}
	c.abortDrag()
	c.mode = AxisMatch{Axis: axis, Source: src}
}

// CancelMode returns to Idle. A drag in progress is rolled back to its
// gesture-start geometry.
func (c *Controller) CancelMode() {
	c.abortDrag()
	c.mode = Idle{}
}

// DeleteSelection removes every selected port. Armed modes referencing a
// removed port auto-cancel via the store's deletion hook.
func (c *Controller) DeleteSelection() {
	members := c.store.Members()
	if len(members) == 0 {
		return
	}
	c.store.Delete(members)
}

// AddPortAt places a new port of the default type at a screen position,
// snapped to the grid. The new port becomes the sole selection.
func (c *Controller) AddPortAt(sx, sy float64) int {
	doc := c.view.ToDocument(sx, sy)
	return c.store.Add(core.Port{
		Type:     c.defaultType,
		Geometry: core.Point{X: c.grid.Snap(doc.X), Y: c.grid.Snap(doc.Y)},
	})
}

// AddPortCenter places a new port of the default type at the document
// center.
func (c *Controller) AddPortCenter() int {
	return c.store.Add(core.Port{Type: c.defaultType})
}

// Nudge moves the primary port by a document-space delta. Locked ports
// do not move.
func (c *Controller) Nudge(dx, dy float64) {
	idx := c.store.Primary()
	if idx < 0 {
		return
	}
	p, ok := c.store.Port(idx)
	if !ok || p.Locked {
		return
	}
	switch g := p.Geometry.(type) {
	case core.Point:
		c.store.Update(idx, store.PortUpdate{Geometry: core.Point{X: g.X + dx, Y: g.Y + dy}})
	case core.Zone:
		g.X += dx
		g.Y += dy
		c.store.Update(idx, store.PortUpdate{Geometry: g})
	}
}

// ApplyFieldEdit is the field-sync write path: it routes an edit of the
// port fields through the store so rounding and lock checks apply. A
// midpoint preview referencing the edited port recomputes automatically.
func (c *Controller) ApplyFieldEdit(idx int, upd store.PortUpdate) {
	c.store.Update(idx, upd)
}

// Hint returns the status-line hint for the active mode.
func (c *Controller) Hint() string {
	switch m := c.mode.(type) {
	case PointDrag:
		if c.axisLock != LockFree {
			return "dragging (" + c.axisLock.String() + ")"
		}
		return "dragging"
	case ZoneDrag:
		if m.Op == ZoneMove {
			return "moving zone"
		}
		return "resizing zone (" + m.Op.String() + ")"
	case MidpointStep1:
		return "midpoint: click the first reference port"
	case MidpointStep2:
		return "midpoint: click the second reference port"
	case MidpointStep3:
		return fmt.Sprintf("midpoint: Enter or click to place at (%g, %g)", m.Preview.X, m.Preview.Y)
	case AxisMatch:
		return fmt.Sprintf("match %s: click a port to copy its %s coordinate", m.Axis, m.Axis)
	default:
		return ""
	}
}

// endDrag leaves a drag mode keeping the current geometry.
func (c *Controller) endDrag() {
	c.store.ResumeHistory()
	c.mode = Idle{}
}

// abortDrag rolls an in-progress drag back to its gesture-start geometry.
func (c *Controller) abortDrag() {
	switch m := c.mode.(type) {
	case PointDrag:
		c.store.Update(m.Index, store.PortUpdate{Geometry: m.Start})
		c.store.ResumeHistory()
	case ZoneDrag:
		c.store.Update(m.Index, store.PortUpdate{Geometry: m.Start})
		c.store.ResumeHistory()
	}
}

func (c *Controller) previewFor(a, b int) core.Point {
	pa, okA := c.store.Port(a)
	pb, okB := c.store.Port(b)
	if !okA || !okB {
		return core.Point{}
	}
	mid := core.Midpoint(pa.Geometry.Center(), pb.Geometry.Center())
	return core.Point{X: geometry.Round2(mid.X), Y: geometry.Round2(mid.Y)}
}

func (c *Controller) confirmMidpoint(m MidpointStep3) {
	// Leave the mode before mutating so the store notification does not
	// re-enter midpoint handling.
	c.mode = Idle{}
	c.store.Add(core.Port{
		Type:     c.defaultType,
		Geometry: m.Preview,
	})
}

func (c *Controller) applyAxisMatch(m AxisMatch, target int) {
	src, okS := c.store.Port(m.Source)
	tgt, okT := c.store.Port(target)
	if !okS || !okT || src.Locked {
		return
	}
	v := axisValue(tgt.Geometry, m.Axis)
	c.store.Update(m.Source, store.PortUpdate{Geometry: withAxis(src.Geometry, m.Axis, v)})
}

// zoneOpFor decides between a body move and a corner resize by hit-testing
// the gesture-start document point against the zone's corner handles.
func (c *Controller) zoneOpFor(z core.Zone, doc core.Point) ZoneOp {
	r := c.HandleRadius()
	corners := []struct {
		op ZoneOp
		pt core.Point
	}{
		{ZoneNW, z.CornerPoint(core.CornerNW)},
		{ZoneNE, z.CornerPoint(core.CornerNE)},
		{ZoneSW, z.CornerPoint(core.CornerSW)},
		{ZoneSE, z.CornerPoint(core.CornerSE)},
	}
	best := ZoneMove
	bestDist := r
	for _, cn := range corners {
		if d := core.Dist(doc, cn.pt); d <= bestDist {
			best = cn.op
			bestDist = d
		}
	}
	return best
}

// resizeZone computes the rectangle for a zone drag at the given document
// point. The second result is false when a corner resize would shrink
// either dimension below the minimum edge length.
func (c *Controller) resizeZone(m ZoneDrag, doc core.Point) (core.Zone, bool) {
	if m.Op == ZoneMove {
		dx := doc.X - m.Anchor.X
		dy := doc.Y - m.Anchor.Y
		return core.Zone{
			X:      c.grid.Snap(m.Start.X + dx),
			Y:      c.grid.Snap(m.Start.Y + dy),
			Width:  m.Start.Width,
			Height: m.Start.Height,
		}, true
	}
	corner, _ := m.Op.Corner()
	fixed := m.Start.CornerPoint(corner.Opposite())
	dragged := m.Start.CornerPoint(corner)
	moved := core.Point{X: c.grid.Snap(doc.X), Y: c.grid.Snap(doc.Y)}

	// A corner dragged across the fixed corner would flip the rectangle;
	// that always passes through the sub-minimum region, so reject it.
	if (dragged.X < fixed.X) != (moved.X < fixed.X) ||
		(dragged.Y < fixed.Y) != (moved.Y < fixed.Y) {
		return core.Zone{}, false
	}
	w := geometry.Abs(moved.X - fixed.X)
	h := geometry.Abs(moved.Y - fixed.Y)
	if w < c.minEdge || h < c.minEdge {
		return core.Zone{}, false
	}
	return core.Zone{
		X:      geometry.Min(fixed.X, moved.X),
		Y:      geometry.Min(fixed.Y, moved.Y),
		Width:  w,
		Height: h,
	}, true
}

// handleDeleted remaps or cancels the active mode after store deletions:
// any mode referencing a removed port is cancelled, uniformly.
func (c *Controller) handleDeleted(deleted []int) {
	switch m := c.mode.(type) {
	case PointDrag:
		if idx := store.RemapIndex(m.Index, deleted); idx < 0 {
			c.endDrag()
		} else {
			m.Index = idx
			c.mode = m
		}
	case ZoneDrag:
		if idx := store.RemapIndex(m.Index, deleted); idx < 0 {
			c.endDrag()
		} else {
			m.Index = idx
			c.mode = m
		}
	case MidpointStep2:
		if idx := store.RemapIndex(m.RefA, deleted); idx < 0 {
			c.mode = Idle{}
		} else {
			m.RefA = idx
			c.mode = m
		}
	case MidpointStep3:
		a := store.RemapIndex(m.RefA, deleted)
		b := store.RemapIndex(m.RefB, deleted)
		if a < 0 || b < 0 {
			c.mode = Idle{}
		} else {
			c.mode = MidpointStep3{RefA: a, RefB: b, Preview: c.previewFor(a, b)}
		}
	case AxisMatch:
		if idx := store.RemapIndex(m.Source, deleted); idx < 0 {
			c.mode = Idle{}
		} else {
			m.Source = idx
			c.mode = m
		}
	}
}

// refreshPreview recomputes a midpoint preview when either reference's
// geometry changes externally, e.g. via a field edit.
func (c *Controller) refreshPreview() {
	m, ok := c.mode.(MidpointStep3)
	if !ok {
		return
	}
	if p := c.previewFor(m.RefA, m.RefB); p != m.Preview {
		m.Preview = p
		c.mode = m
	}
}

func axisValue(g core.Geometry, a Axis) float64 {
	switch v := g.(type) {
	case core.Point:
		if a == AxisX {
			return v.X
		}
		return v.Y
	case core.Zone:
		if a == AxisX {
			return v.X
		}
		return v.Y
	default:
		return 0
	}
}

func withAxis(g core.Geometry, a Axis, val float64) core.Geometry {
	switch v := g.(type) {
	case core.Point:
		if a == AxisX {
			v.X = val
		} else {
			v.Y = val
		}
		return v
	case core.Zone:
		if a == AxisX {
			v.X = val
		} else {
			v.Y = val
		}
		return v
	default:
		return g
	}
}
