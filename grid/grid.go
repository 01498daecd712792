// Package grid rounds document coordinates to the configured grid step.
package grid

import "math"

// DefaultSize is the grid step used when none is configured.
const DefaultSize = 10.0

// Grid is the snap-to-grid configuration. The zero value is a disabled grid.
type Grid struct {
	Enabled bool
	Size    float64 // grid step in document units; must be positive to snap
}

// Snap rounds v to the nearest multiple of the grid size. When snapping is
// disabled (or the size is not positive) v passes through unchanged.
// Snap is idempotent: Snap(Snap(v)) == Snap(v).
func (g Grid) Snap(v float64) float64 {
	if !g.Enabled || g.Size <= 0 {
		return v
	}
	return math.Round(v/g.Size) * g.Size
}
