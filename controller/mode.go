package controller

import "portstudio/core"

// Mode is the controller's single active interaction mode. Exactly one mode
// exists at a time; each variant carries only the fields valid for that
// state. Modes are created on a user gesture and destroyed on mouse-up,
// confirm, Escape, or symbol switch.
type Mode interface {
	Name() string
	mode()
}

// Idle is the default mode: selection hit-testing only.
type Idle struct{}

// PointDrag moves an unlocked point port with the pointer, subject to the
// axis lock and snapping.
type PointDrag struct {
	Index int
	Start core.Point // geometry at gesture start, restored on cancel
}

// ZoneOp is the kind of zone drag in progress.
type ZoneOp int

const (
	ZoneMove ZoneOp = iota
	ZoneNW
	ZoneNE
	ZoneSW
	ZoneSE
)

// String returns the op name for display.
func (op ZoneOp) String() string {
	switch op {
	case ZoneMove:
		return "move"
	case ZoneNW:
		return "nw"
	case ZoneNE:
		return "ne"
	case ZoneSW:
		return "sw"
	default:
		return "se"
	}
}

// Corner returns the zone corner a resize op drags, and false for ZoneMove.
func (op ZoneOp) Corner() (core.Corner, bool) {
	switch op {
	case ZoneNW:
		return core.CornerNW, true
	case ZoneNE:
		return core.CornerNE, true
	case ZoneSW:
		return core.CornerSW, true
	case ZoneSE:
		return core.CornerSE, true
	default:
		return 0, false
	}
}

// ZoneDrag moves or corner-resizes a zone port. The rectangle is recomputed
// from the pointer delta relative to the gesture-start geometry; corner ops
// keep the opposite corner fixed.
type ZoneDrag struct {
	Index  int
	Op     ZoneOp
	Start  core.Zone  // geometry at gesture start
	Anchor core.Point // document point where the gesture began
}

// MidpointStep1 is the armed midpoint mode awaiting the first reference.
type MidpointStep1 struct{}

// MidpointStep2 holds the first reference and awaits a different second one.
type MidpointStep2 struct {
	RefA int
}

// MidpointStep3 holds both references and the live preview position. The
// preview recomputes whenever either reference's geometry changes.
type MidpointStep3 struct {
	RefA, RefB int
	Preview    core.Point
}

// Axis selects the coordinate an AxisMatch copies.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// String returns "X" or "Y".
func (a Axis) String() string {
	if a == AxisX {
		return "X"
	}
	return "Y"
}

// AxisMatch is armed for the selected port; clicking a different port copies
// that port's coordinate on the chosen axis onto the source.
type AxisMatch struct {
	Axis   Axis
	Source int
}

func (Idle) mode()          {}
func (PointDrag) mode()     {}
func (ZoneDrag) mode()      {}
func (MidpointStep1) mode() {}
func (MidpointStep2) mode() {}
func (MidpointStep3) mode() {}
func (AxisMatch) mode()     {}

// Name returns the mode name for display.
func (Idle) Name() string          { return "IDLE" }
func (PointDrag) Name() string     { return "DRAG" }
func (m ZoneDrag) Name() string    { return "ZONE-" + m.Op.String() }
func (MidpointStep1) Name() string { return "MIDPOINT-1" }
func (MidpointStep2) Name() string { return "MIDPOINT-2" }
func (MidpointStep3) Name() string { return "MIDPOINT-3" }
func (m AxisMatch) Name() string   { return "MATCH-" + m.Axis.String() }

// AxisLock constrains point drags. The name denotes which coordinate is
// held fixed, not which axis of motion is enabled: LockX freezes x and lets
// the pointer drive y only.
type AxisLock int

const (
	LockFree AxisLock = iota
	LockX
	LockY
)

// String returns the serialized lock name.
func (l AxisLock) String() string {
	switch l {
	case LockX:
		return "LOCK_X"
	case LockY:
		return "LOCK_Y"
	default:
		return "FREE"
	}
}
