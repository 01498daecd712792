package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portstudio/core"
)

func TestResetFitsAndCenters(t *testing.T) {
	v := New(80, 80, 800, 600)
	v.Reset()

	// fit = min(800/80, 600/80) = 7.5, centered horizontally
	assert.Equal(t, 7.5, v.Scale())
	sx, sy := v.ToScreen(core.Point{X: 0, Y: 0})
	assert.Equal(t, 100.0, sx)
	assert.Equal(t, 0.0, sy)
	sx, sy = v.ToScreen(core.Point{X: 80, Y: 80})
	assert.Equal(t, 700.0, sx)
	assert.Equal(t, 600.0, sy)
}

func TestRoundTripMapping(t *testing.T) {
	v := New(80, 120, 640, 480)
	v.Reset()
	v.ZoomAt(300, 200, 2.3)
	v.Pan(-17, 41)

	for _, p := range []core.Point{{X: 0, Y: 0}, {X: 40, Y: 60}, {X: 79.99, Y: 119.5}, {X: 12.34, Y: 56.78}} {
		sx, sy := v.ToScreen(p)
		back := v.ToDocument(sx, sy)
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestZoomKeepsAnchorUnderCursor(t *testing.T) {
	v := New(80, 80, 800, 600)
	v.Reset()

	const sx, sy = 317.0, 123.0
	before := v.ToDocument(sx, sy)
	v.ZoomAt(sx, sy, 1.5)
	after := v.ToDocument(sx, sy)

	require.NotEqual(t, 7.5, v.Scale())
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestZoomNeverBelowFit(t *testing.T) {
	v := New(80, 80, 800, 600)
	v.Reset()

	v.ZoomAt(400, 300, 0.1)
	assert.Equal(t, 7.5, v.Scale())
}

func TestZoomCeiling(t *testing.T) {
	v := New(80, 80, 800, 600)
	v.Reset()

	// ceiling = min(fit*8, 4096/80) = min(60, 51.2)
	v.ZoomAt(400, 300, 1000)
	assert.Equal(t, 51.2, v.Scale())
}

func TestZoomMultipleBindsBeforePixelCeiling(t *testing.T) {
	v := New(80, 80, 800, 600)
	v.SetMaxZoomMultiple(2)
	v.Reset()

	v.ZoomAt(400, 300, 1000)
	assert.Equal(t, 15.0, v.Scale())
}

func TestResizeKeepsScaleInBounds(t *testing.T) {
	v := New(80, 80, 800, 600)
	v.Reset()
	v.ZoomAt(400, 300, 4)
	require.Equal(t, 30.0, v.Scale())

	// Shrinking the screen drops the fit scale; 30 is still within bounds.
	v.SetScreenSize(400, 300)
	assert.Equal(t, 30.0, v.Scale())

	// Growing the screen past the current scale forces a reset to fit.
	v.SetScreenSize(4000, 4000)
	assert.Equal(t, 50.0, v.Scale())
}
