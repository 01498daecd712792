// Package core contains the fundamental types used throughout the portstudio
// annotation engine.
package core

import "math"

// PortType classifies a connection port on a symbol.
type PortType int

const (
	In PortType = iota
	Out
	InOut
	Signal
	Process
	North
	South
	East
	West
	Reference
	Custom
)

// String returns the serialized name of a PortType.
func (t PortType) String() string {
	switch t {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "in_out"
	case Signal:
		return "signal"
	case Process:
		return "process"
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	case Reference:
		return "reference"
	case Custom:
		return "custom"
	default:
		return "reference"
	}
}

// ParsePortType maps a serialized name to a PortType.
// The second result is false for unknown names.
func ParsePortType(s string) (PortType, bool) {
	switch s {
	case "in":
		return In, true
	case "out":
		return Out, true
	case "in_out":
		return InOut, true
	case "signal":
		return Signal, true
	case "process":
		return Process, true
	case "north":
		return North, true
	case "south":
		return South, true
	case "east":
		return East, true
	case "west":
		return West, true
	case "reference":
		return Reference, true
	case "custom":
		return Custom, true
	default:
		return Reference, false
	}
}

// Color returns the display color for a port type as a hex string.
func (t PortType) Color() string {
	switch t {
	case In:
		return "#2196F3"
	case Out:
		return "#F44336"
	case InOut:
		return "#009688"
	case Signal:
		return "#9C27B0"
	case Process:
		return "#FF9800"
	case North, South, East, West:
		return "#4CAF50"
	case Reference:
		return "#9E9E9E"
	default:
		return "#607D8B"
	}
}

// Palette overrides display colors per port type. A nil Palette is valid
// and yields the built-in colors for every type.
type Palette map[PortType]string

// Color returns the override for t, falling back to the built-in color.
func (p Palette) Color(t PortType) string {
	if c, ok := p[t]; ok && c != "" {
		return c
	}
	return t.Color()
}

// Point is a single document-space coordinate.
type Point struct {
	X, Y float64
}

// Zone is an axis-aligned rectangle in document space.
// Width and Height are positive for any zone at rest.
type Zone struct {
	X, Y, Width, Height float64
}

// Geometry is the shape of a port: either a Point or a Zone, never both.
// Conversion between the two is a discrete operation on the store, not a
// continuous deformation.
type Geometry interface {
	// Center returns the representative point of the geometry: the point
	// itself, or the zone centroid.
	Center() Point

	geometry()
}

func (p Point) geometry() {}
func (z Zone) geometry()  {}

// Center returns the point itself.
func (p Point) Center() Point { return p }

// Center returns the zone centroid.
func (z Zone) Center() Point {
	return Point{X: z.X + z.Width/2, Y: z.Y + z.Height/2}
}

// Contains reports whether a document point lies inside the zone.
func (z Zone) Contains(p Point) bool {
	return p.X >= z.X && p.X <= z.X+z.Width &&
		p.Y >= z.Y && p.Y <= z.Y+z.Height
}

// Corner identifies a zone corner.
type Corner int

const (
	CornerNW Corner = iota
	CornerNE
	CornerSW
	CornerSE
)

// CornerPoint returns the position of the given corner.
func (z Zone) CornerPoint(c Corner) Point {
	switch c {
	case CornerNW:
		return Point{X: z.X, Y: z.Y}
	case CornerNE:
		return Point{X: z.X + z.Width, Y: z.Y}
	case CornerSW:
		return Point{X: z.X, Y: z.Y + z.Height}
	default:
		return Point{X: z.X + z.Width, Y: z.Y + z.Height}
	}
}

// Opposite returns the diagonally opposite corner.
func (c Corner) Opposite() Corner {
	switch c {
	case CornerNW:
		return CornerSE
	case CornerNE:
		return CornerSW
	case CornerSW:
		return CornerNE
	default:
		return CornerNW
	}
}

// Port is one annotated connection point or region on a symbol.
type Port struct {
	ID       string   // user-visible name; need not be unique
	Type     PortType // drives color/semantics
	Locked   bool     // geometry immutable via interactive operations
	Geometry Geometry
}

// Document is the canonical coordinate space of a loaded symbol plus its
// ports. VW and VH never change for the lifetime of the symbol; zoom and pan
// affect only the visual mapping, never these values.
type Document struct {
	VW, VH float64
	Ports  []Port
}

// Clone returns a deep copy of the document.
// Geometry values are immutable value types, so a slice copy suffices.
func (d *Document) Clone() *Document {
	clone := &Document{VW: d.VW, VH: d.VH}
	clone.Ports = make([]Port, len(d.Ports))
	copy(clone.Ports, d.Ports)
	return clone
}

// Dist returns the euclidean distance between two points.
func Dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Midpoint returns the average of two points.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
