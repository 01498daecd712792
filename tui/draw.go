package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"portstudio/controller"
	"portstudio/core"
)

func (e *Editor) draw() {
	e.screen.Clear()
	w, h := e.screen.Size()

	e.drawBorder()
	for i, p := range e.store.Ports() {
		e.drawPort(i, p)
	}
	if m, ok := e.ctrl.Mode().(controller.MidpointStep3); ok {
		x, y := e.view.ToScreen(m.Preview)
		e.set(int(x), int(y), '+', tcell.StyleDefault.Bold(true))
	}
	e.drawStatus(w, h)
	e.screen.Show()
}

// drawBorder outlines the document rectangle.
func (e *Editor) drawBorder() {
	x0f, y0f := e.view.ToScreen(core.Point{X: 0, Y: 0})
	x1f, y1f := e.view.ToScreen(core.Point{X: e.store.VW(), Y: e.store.VH()})
	x0, y0, x1, y1 := int(x0f), int(y0f), int(x1f), int(y1f)

	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for x := x0 + 1; x < x1; x++ {
		e.set(x, y0, '─', style)
		e.set(x, y1, '─', style)
	}
	for y := y0 + 1; y < y1; y++ {
		e.set(x0, y, '│', style)
		e.set(x1, y, '│', style)
	}
	e.set(x0, y0, '┌', style)
	e.set(x1, y0, '┐', style)
	e.set(x0, y1, '└', style)
	e.set(x1, y1, '┘', style)
}

func (e *Editor) drawPort(idx int, p core.Port) {
	style := tcell.StyleDefault.Foreground(tcell.GetColor(e.palette.Color(p.Type)))
	selected := e.store.IsSelected(idx)
	primary := idx == e.store.Primary()
	if selected {
		style = style.Bold(true)
	}
	if primary {
		style = style.Reverse(true)
	}

	switch g := p.Geometry.(type) {
	case core.Point:
		xf, yf := e.view.ToScreen(g)
		x, y := int(xf), int(yf)
		marker := '●'
		if p.Locked {
			marker = '◆'
		}
		e.set(x, y, marker, style)
		if primary {
			e.text(x+2, y, p.ID, tcell.StyleDefault.Foreground(tcell.GetColor(e.palette.Color(p.Type))))
		}
	case core.Zone:
		e.drawZone(g, p, style, primary)
	}
}

func (e *Editor) drawZone(g core.Zone, p core.Port, style tcell.Style, primary bool) {
	x0f, y0f := e.view.ToScreen(g.CornerPoint(core.CornerNW))
	x1f, y1f := e.view.ToScreen(g.CornerPoint(core.CornerSE))
	x0, y0, x1, y1 := int(x0f), int(y0f), int(x1f), int(y1f)

	for x := x0 + 1; x < x1; x += 2 {
		e.set(x, y0, '╌', style)
		e.set(x, y1, '╌', style)
	}
	for y := y0 + 1; y < y1; y++ {
		e.set(x0, y, '┆', style)
		e.set(x1, y, '┆', style)
	}
	corner := '+'
	if p.Locked {
		corner = '◆'
	}
	e.set(x0, y0, corner, style)
	e.set(x1, y0, corner, style)
	e.set(x0, y1, corner, style)
	e.set(x1, y1, corner, style)

	if primary {
		c := g.Center()
		cxf, cyf := e.view.ToScreen(c)
		e.text(int(cxf)-len(p.ID)/2, int(cyf), p.ID, style)
	}
}

func (e *Editor) drawStatus(w, h int) {
	style := tcell.StyleDefault.Reverse(true)
	for x := 0; x < w; x++ {
		e.screen.SetContent(x, h-1, ' ', nil, style)
	}

	var line string
	switch {
	case e.editing != nil:
		line = "id: " + e.editing.buf + "▌"
	case e.ctrl.Hint() != "":
		line = e.ctrl.Hint()
	case e.message != "":
		line = e.message
	default:
		line = e.primarySummary()
	}

	left := fmt.Sprintf(" %s │ %s", e.ctrl.Mode().Name(), line)
	e.text(0, h-1, left, style)

	right := fmt.Sprintf("lock:%s grid:%s ports:%d", e.ctrl.AxisLock(), e.gridLabel(), e.store.Len())
	if e.dirty {
		right += " *"
	}
	right += " "
	e.text(w-len(right), h-1, right, style)
}

func (e *Editor) primarySummary() string {
	idx := e.store.Primary()
	p, ok := e.store.Port(idx)
	if !ok {
		return "click a port, or: a add  m midpoint  x/y match  s save  q quit"
	}
	lock := ""
	if p.Locked {
		lock = " [locked]"
	}
	switch g := p.Geometry.(type) {
	case core.Point:
		return fmt.Sprintf("%q %s (%g, %g)%s", p.ID, p.Type, g.X, g.Y, lock)
	case core.Zone:
		return fmt.Sprintf("%q %s (%g, %g) %gx%g%s", p.ID, p.Type, g.X, g.Y, g.Width, g.Height, lock)
	}
	return ""
}

func (e *Editor) gridLabel() string {
	if e.grid.Enabled {
		return fmt.Sprintf("%g", e.grid.Size)
	}
	return "off"
}

// set writes one cell, skipping the status line.
func (e *Editor) set(x, y int, r rune, style tcell.Style) {
	w, h := e.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h-1 {
		return
	}
	e.screen.SetContent(x, y, r, nil, style)
}

func (e *Editor) text(x, y int, s string, style tcell.Style) {
	for i, r := range s {
		e.screen.SetContent(x+i, y, r, nil, style)
	}
}
