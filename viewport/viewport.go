// Package viewport maps between screen pixels and document coordinates.
//
// The document space of a loaded symbol is fixed; the viewport owns the
// affine transform (uniform scale plus translation) that places it on
// screen. Zoom and pan mutate only this transform, never stored geometry.
package viewport

import (
	"portstudio/core"
	"portstudio/geometry"
)

// MaxScreenPixels caps how large the document's longer dimension may be
// drawn, regardless of the zoom multiple.
const MaxScreenPixels = 4096.0

// DefaultMaxZoomMultiple is how far past the fit scale the user may zoom in.
const DefaultMaxZoomMultiple = 8.0

// Viewport is the screen-to-document affine transform for one loaded symbol.
type Viewport struct {
	docW, docH       float64
	screenW, screenH float64

	scale      float64 // screen pixels per document unit
	panX, panY float64 // screen position of the document origin

	fitScale float64 // minimum scale: the initial fit-to-viewport scale
	maxScale float64

	maxMultiple float64
}

// New creates a viewport for a document of the given intrinsic size,
// fit and centered in a screen area of the given size.
func New(docW, docH, screenW, screenH float64) *Viewport {
	v := &Viewport{
		docW:        docW,
		docH:        docH,
		maxMultiple: DefaultMaxZoomMultiple,
	}
	v.SetScreenSize(screenW, screenH)
	return v
}

// SetMaxZoomMultiple overrides the zoom ceiling multiple. Values below 1
// are ignored.
func (v *Viewport) SetMaxZoomMultiple(m float64) {
	if m < 1 {
		return
	}
	v.maxMultiple = m
	v.recomputeBounds()
	v.clamp()
}

// SetScreenSize updates the viewport's on-screen area, recomputing the fit
// scale and re-centering if the current scale falls out of bounds.
func (v *Viewport) SetScreenSize(w, h float64) {
	v.screenW = w
	v.screenH = h
	v.recomputeBounds()
	if v.scale < v.fitScale || v.scale > v.maxScale {
		v.Reset()
	}
}

func (v *Viewport) recomputeBounds() {
	if v.docW <= 0 || v.docH <= 0 || v.screenW <= 0 || v.screenH <= 0 {
		v.fitScale = 1
		v.maxScale = 1
		return
	}
	v.fitScale = geometry.Min(v.screenW/v.docW, v.screenH/v.docH)
	ceiling := MaxScreenPixels / geometry.Max(v.docW, v.docH)
	v.maxScale = geometry.Max(v.fitScale, geometry.Min(v.fitScale*v.maxMultiple, ceiling))
}

// Reset restores the fit-to-viewport scale with the document centered.
func (v *Viewport) Reset() {
	v.scale = v.fitScale
	v.panX = (v.screenW - v.docW*v.scale) / 2
	v.panY = (v.screenH - v.docH*v.scale) / 2
}

// Scale returns the current screen-pixels-per-document-unit factor.
func (v *Viewport) Scale() float64 { return v.scale }

// ToDocument converts a screen position to document space.
func (v *Viewport) ToDocument(sx, sy float64) core.Point {
	return core.Point{
		X: (sx - v.panX) / v.scale,
		Y: (sy - v.panY) / v.scale,
	}
}

// ToScreen converts a document point to screen space.
func (v *Viewport) ToScreen(p core.Point) (float64, float64) {
	return p.X*v.scale + v.panX, p.Y*v.scale + v.panY
}

// ZoomAt multiplies the scale by factor, anchored at the given screen
// position: the document point under the cursor stays under the cursor.
// The scale is clamped to [fit, max]; the pan is solved from the anchor.
func (v *Viewport) ZoomAt(sx, sy, factor float64) {
	anchor := v.ToDocument(sx, sy)
	v.scale = geometry.Clamp(v.scale*factor, v.fitScale, v.maxScale)
	v.panX = sx - anchor.X*v.scale
	v.panY = sy - anchor.Y*v.scale
}

// Pan translates the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.panX += dx
	v.panY += dy
}

func (v *Viewport) clamp() {
	v.scale = geometry.Clamp(v.scale, v.fitScale, v.maxScale)
}
