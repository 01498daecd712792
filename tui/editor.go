// Package tui is the terminal presentation adapter: it maps tcell mouse
// and key events onto the annotation engine and renders the document as
// a character grid. All engine semantics live below it; the adapter only
// translates events and draws.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"portstudio/config"
	"portstudio/controller"
	"portstudio/core"
	"portstudio/grid"
	"portstudio/store"
	"portstudio/symbol"
	"portstudio/viewport"
)

// Editor is one terminal annotation session over a single symbol.
type Editor struct {
	screen tcell.Screen

	store *store.Store
	view  *viewport.Viewport
	grid  *grid.Grid
	ctrl  *controller.Controller

	svgPath string
	meta    *symbol.Meta
	palette core.Palette

	// editing holds the field-sync line editor state while renaming the
	// primary port; nil otherwise.
	editing *fieldEdit

	message   string
	mouseDown bool
	dirty     bool
	quit      bool
}

type fieldEdit struct {
	buf string
}

// New loads a symbol and assembles an editor session for it.
func New(svgPath string, cfg config.Config) (*Editor, error) {
	doc, meta, err := symbol.Load(svgPath)
	if err != nil {
		return nil, err
	}

	g := cfg.NewGrid()
	st := store.New(doc)
	vp := viewport.New(doc.VW, doc.VH, 80, 24)
	vp.SetMaxZoomMultiple(cfg.MaxZoomMultiple)

	e := &Editor{
		store:   st,
		view:    vp,
		grid:    &g,
		ctrl:    controller.New(st, vp, &g),
		svgPath: svgPath,
		meta:    meta,
		palette: cfg.Palette(),
	}
	e.ctrl.SetMinZoneEdge(cfg.MinZoneEdge)
	st.OnChange(func() { e.dirty = true })
	return e, nil
}

// Run owns the screen until the user quits. The document is not saved
// implicitly; 's' writes the sidecar.
func (e *Editor) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	e.screen = screen

	w, h := screen.Size()
	e.view.SetScreenSize(float64(w), float64(h-1))
	e.view.Reset()

	for !e.quit {
		e.draw()
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			w, h := ev.Size()
			e.view.SetScreenSize(float64(w), float64(h-1))
			screen.Sync()
		case *tcell.EventMouse:
			e.handleMouse(ev)
		case *tcell.EventKey:
			e.handleKey(ev)
		}
	}
	return nil
}

func (e *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	sx, sy := float64(x), float64(y)

	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		e.view.ZoomAt(sx, sy, 1.25)
	case ev.Buttons()&tcell.WheelDown != 0:
		e.view.ZoomAt(sx, sy, 0.8)
	case ev.Buttons()&tcell.Button1 != 0:
		if e.mouseDown {
			e.ctrl.OnPointerMove(sx, sy)
		} else {
			e.mouseDown = true
			e.ctrl.OnPointerDown(sx, sy, e.hitTest(sx, sy))
		}
	case ev.Buttons() == tcell.ButtonNone:
		if e.mouseDown {
			e.mouseDown = false
			e.ctrl.OnPointerUp()
		}
	}
}

func (e *Editor) handleKey(ev *tcell.EventKey) {
	if e.editing != nil {
		e.handleEditKey(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		e.ctrl.OnKeyDown(controller.KeyEscape)
	case tcell.KeyEnter:
		e.ctrl.OnKeyDown(controller.KeyEnter)
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		e.ctrl.OnKeyDown(controller.KeyDelete)
	case tcell.KeyUp:
		e.ctrl.Nudge(0, -e.nudgeStep())
	case tcell.KeyDown:
		e.ctrl.Nudge(0, e.nudgeStep())
	case tcell.KeyLeft:
		e.ctrl.Nudge(-e.nudgeStep(), 0)
	case tcell.KeyRight:
		e.ctrl.Nudge(e.nudgeStep(), 0)
	case tcell.KeyCtrlC:
		e.quit = true
	case tcell.KeyRune:
		e.handleRune(ev.Rune())
	}
}

func (e *Editor) handleRune(r rune) {
	switch r {
	case 'q':
		e.quit = true
	case 's':
		e.save()
	case 'a':
		e.ctrl.AddPortCenter()
	case 'm':
		e.ctrl.ArmMidpoint()
	case 'x':
		e.ctrl.ArmAxisMatch(controller.AxisX)
	case 'y':
		e.ctrl.ArmAxisMatch(controller.AxisY)
	case 'g':
		e.grid.Enabled = !e.grid.Enabled
	case 'l':
		e.cycleAxisLock()
	case 'c':
		if idx := e.store.Primary(); idx >= 0 {
			e.store.ConvertGeometry(idx)
		}
	case 'L':
		e.toggleLock()
	case 't':
		e.cycleType()
	case 'e':
		if e.store.Primary() >= 0 {
			e.editing = &fieldEdit{}
		}
	case 'u':
		e.store.Undo()
	case 'r':
		e.store.Redo()
	case '+', '=':
		w, h := e.screen.Size()
		e.view.ZoomAt(float64(w)/2, float64(h-1)/2, 1.25)
	case '-':
		w, h := e.screen.Size()
		e.view.ZoomAt(float64(w)/2, float64(h-1)/2, 0.8)
	case '0':
		e.view.Reset()
	}
}

// handleEditKey is the in-place line editor for the primary port's id.
func (e *Editor) handleEditKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		e.editing = nil
	case tcell.KeyEnter:
		if idx := e.store.Primary(); idx >= 0 && e.editing.buf != "" {
			id := e.editing.buf
			e.ctrl.ApplyFieldEdit(idx, store.PortUpdate{ID: &id})
		}
		e.editing = nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(e.editing.buf); n > 0 {
			e.editing.buf = e.editing.buf[:n-1]
		}
	case tcell.KeyRune:
		e.editing.buf += string(ev.Rune())
	}
}

func (e *Editor) cycleAxisLock() {
	switch e.ctrl.AxisLock() {
	case controller.LockFree:
		e.ctrl.SetAxisLock(controller.LockX)
	case controller.LockX:
		e.ctrl.SetAxisLock(controller.LockY)
	default:
		e.ctrl.SetAxisLock(controller.LockFree)
	}
}

func (e *Editor) toggleLock() {
	idx := e.store.Primary()
	if idx < 0 {
		return
	}
	p, ok := e.store.Port(idx)
	if !ok {
		return
	}
	locked := !p.Locked
	e.ctrl.ApplyFieldEdit(idx, store.PortUpdate{Locked: &locked})
}

func (e *Editor) cycleType() {
	idx := e.store.Primary()
	if idx < 0 {
		return
	}
	p, ok := e.store.Port(idx)
	if !ok {
		return
	}
	next := p.Type + 1
	if next > core.Custom {
		next = core.In
	}
	e.ctrl.ApplyFieldEdit(idx, store.PortUpdate{Type: &next})
}

// nudgeStep is one grid unit when snapping is on, otherwise one document
// unit.
func (e *Editor) nudgeStep() float64 {
	if e.grid.Enabled && e.grid.Size > 0 {
		return e.grid.Size
	}
	return 1
}

func (e *Editor) save() {
	e.meta.SetPorts(e.store.Ports())
	metaPath := symbol.MetaPath(e.svgPath)
	if err := e.meta.Write(metaPath); err != nil {
		e.message = "save failed: " + err.Error()
		return
	}
	e.dirty = false
	e.message = fmt.Sprintf("saved %d ports to %s", e.store.Len(), metaPath)
}

// hitTest finds the port under a screen position: the nearest point port
// within the handle radius wins, otherwise the topmost zone containing
// the position. -1 means bare canvas.
func (e *Editor) hitTest(sx, sy float64) int {
	doc := e.view.ToDocument(sx, sy)
	r := e.ctrl.HandleRadius()

	best := -1
	bestDist := r
	ports := e.store.Ports()
	for i, p := range ports {
		if g, ok := p.Geometry.(core.Point); ok {
			if d := core.Dist(doc, g); d <= bestDist {
				best = i
				bestDist = d
			}
		}
	}
	if best >= 0 {
		return best
	}
	for i := len(ports) - 1; i >= 0; i-- {
		if g, ok := ports[i].Geometry.(core.Zone); ok && g.Contains(doc) {
			return i
		}
	}
	return -1
}
