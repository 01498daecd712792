// Package symbol reads and writes per-symbol annotation data: the port
// records stored in a symbol's sidecar JSON file, and the intrinsic
// document size extracted from the SVG itself.
//
// Load-time validation is the one place errors escalate to the caller;
// everything downstream assumes a well-formed document.
package symbol

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"portstudio/core"
	"portstudio/geometry"
)

var (
	// ErrBadSize reports a missing or non-positive document size.
	ErrBadSize = errors.New("symbol: missing or non-positive document size")

	// ErrBadPort reports a port record that cannot be interpreted as
	// either a point or a zone.
	ErrBadPort = errors.New("symbol: unparsable port record")
)

// ZoneJSON is the wire shape of a rectangular port region.
type ZoneJSON struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PortJSON is the wire shape of one port record. Two historical shapes
// exist: the flat form {id, x, y} without a type, and the current typed
// form carrying either x/y or a zone object plus an optional locked flag.
// The locked key is omitted on write when false so that consumers
// predating the flag keep working.
type PortJSON struct {
	ID     string    `json:"id"`
	Type   string    `json:"type,omitempty"`
	X      *float64  `json:"x,omitempty"`
	Y      *float64  `json:"y,omitempty"`
	Zone   *ZoneJSON `json:"zone,omitempty"`
	Locked bool      `json:"locked,omitempty"`
}

// DecodePort interprets one wire record, migrating legacy shapes.
// A record without a type inherits its id when that names a known port
// type, otherwise it becomes a reference port. Unknown type names also
// migrate to reference rather than failing.
func DecodePort(rec PortJSON) (core.Port, error) {
	var typ core.PortType
	if rec.Type != "" {
		typ, _ = core.ParsePortType(rec.Type)
	} else if t, ok := core.ParsePortType(rec.ID); ok {
		typ = t
	} else {
		typ = core.Reference
	}

	var geom core.Geometry
	switch {
	case rec.Zone != nil:
		if rec.Zone.Width <= 0 || rec.Zone.Height <= 0 {
			return core.Port{}, fmt.Errorf("%w: %q zone is %gx%g", ErrBadPort, rec.ID, rec.Zone.Width, rec.Zone.Height)
		}
		geom = core.Zone{
			X:      geometry.Round2(rec.Zone.X),
			Y:      geometry.Round2(rec.Zone.Y),
			Width:  geometry.Round2(rec.Zone.Width),
			Height: geometry.Round2(rec.Zone.Height),
		}
	case rec.X != nil && rec.Y != nil:
		geom = core.Point{X: geometry.Round2(*rec.X), Y: geometry.Round2(*rec.Y)}
	default:
		return core.Port{}, fmt.Errorf("%w: %q has neither x/y nor a zone", ErrBadPort, rec.ID)
	}

	return core.Port{ID: rec.ID, Type: typ, Locked: rec.Locked, Geometry: geom}, nil
}

// EncodePort converts a port to its wire record, rounding coordinates.
func EncodePort(p core.Port) PortJSON {
	rec := PortJSON{ID: p.ID, Type: p.Type.String(), Locked: p.Locked}
	switch g := p.Geometry.(type) {
	case core.Point:
		x := geometry.Round2(g.X)
		y := geometry.Round2(g.Y)
		rec.X = &x
		rec.Y = &y
	case core.Zone:
		rec.Zone = &ZoneJSON{
			X:      geometry.Round2(g.X),
			Y:      geometry.Round2(g.Y),
			Width:  geometry.Round2(g.Width),
			Height: geometry.Round2(g.Height),
		}
	}
	return rec
}

// DecodePorts interprets a full record list. Any unparsable record fails
// the whole load; partial port lists would silently lose annotations.
func DecodePorts(recs []PortJSON) ([]core.Port, error) {
	ports := make([]core.Port, 0, len(recs))
	for i, rec := range recs {
		p, err := DecodePort(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		ports = append(ports, p)
	}
	return ports, nil
}

// EncodePorts converts a port list to wire records.
func EncodePorts(ports []core.Port) []PortJSON {
	recs := make([]PortJSON, len(ports))
	for i, p := range ports {
		recs[i] = EncodePort(p)
	}
	return recs
}

// NewDocument validates the document size and assembles a document from
// wire records.
func NewDocument(vw, vh float64, recs []PortJSON) (*core.Document, error) {
	if vw <= 0 || vh <= 0 {
		return nil, fmt.Errorf("%w: %gx%g", ErrBadSize, vw, vh)
	}
	ports, err := DecodePorts(recs)
	if err != nil {
		return nil, err
	}
	return &core.Document{VW: vw, VH: vh, Ports: ports}, nil
}

type svgRoot struct {
	Width   string `xml:"width,attr"`
	Height  string `xml:"height,attr"`
	ViewBox string `xml:"viewBox,attr"`
}

// ParseSVGSize extracts the intrinsic size of an SVG, preferring the
// width/height attributes and falling back to the viewBox. Unit suffixes
// on the attributes ("80px", "24mm") are ignored; only the leading
// number counts.
func ParseSVGSize(svg []byte) (float64, float64, error) {
	var root svgRoot
	if err := xml.Unmarshal(svg, &root); err != nil {
		return 0, 0, fmt.Errorf("symbol: parse svg: %w", err)
	}

	w := numericPrefix(root.Width)
	h := numericPrefix(root.Height)
	if w > 0 && h > 0 {
		return w, h, nil
	}

	parts := strings.Fields(strings.ReplaceAll(root.ViewBox, ",", " "))
	if len(parts) >= 4 {
		w = numericPrefix(parts[2])
		h = numericPrefix(parts[3])
		if w > 0 && h > 0 {
			return w, h, nil
		}
	}
	return 0, 0, ErrBadSize
}

// numericPrefix parses the leading number of a value like "80px",
// returning 0 when there is none.
func numericPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' || c == '.' || (end == 0 && (c == '+' || c == '-')) {
			end++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}
