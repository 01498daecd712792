// Package overlay renders labelled port markers into a copy of a
// symbol's SVG, for eyeballing annotations without the editor.
package overlay

import (
	"fmt"
	"strconv"
	"strings"

	"portstudio/core"
	"portstudio/geometry"
)

// MarkerRadius returns the point-marker radius for a document, sized
// relative to the smaller dimension with a floor of 2 units.
func MarkerRadius(vw, vh float64) float64 {
	return geometry.Max(2, geometry.Min(vw, vh)*0.04)
}

// Generate inserts a marker group before the closing </svg> tag.
// Point ports draw as filled circles with the label alongside; zone
// ports draw as dashed rectangles with the label centered. Marker
// colors follow the port type, subject to palette overrides.
func Generate(svg []byte, doc *core.Document, pal core.Palette) []byte {
	r := MarkerRadius(doc.VW, doc.VH)
	fontSize := geometry.Round2(r * 1.1)
	strokeW := geometry.Round2(r * 0.15)
	textStrokeW := geometry.Round2(fontSize * 0.12)

	var b strings.Builder
	b.WriteString(`<g id="port-debug" style="pointer-events:none;">`)
	b.WriteByte('\n')
	for _, p := range doc.Ports {
		col := pal.Color(p.Type)
		label := p.ID
		if label == "" {
			label = "?"
		}
		switch g := p.Geometry.(type) {
		case core.Zone:
			fmt.Fprintf(&b,
				`  <rect x="%s" y="%s" width="%s" height="%s" fill="%s" fill-opacity="0.2" stroke="%s" stroke-width="%s" stroke-dasharray="%s %s"/>`,
				num(g.X), num(g.Y), num(g.Width), num(g.Height),
				col, col, num(strokeW), num(r*0.7), num(r*0.35))
			b.WriteByte('\n')
			c := g.Center()
			fmt.Fprintf(&b,
				`  <text x="%s" y="%s" font-size="%s" fill="%s" font-family="monospace" text-anchor="middle" stroke="white" stroke-width="%s" paint-order="stroke">%s</text>`,
				num(c.X), num(c.Y+fontSize*0.4), num(fontSize), col,
				num(textStrokeW), escape(label))
			b.WriteByte('\n')
		case core.Point:
			fmt.Fprintf(&b,
				`  <circle cx="%s" cy="%s" r="%s" fill="%s" stroke="white" stroke-width="%s" opacity="0.9"/>`,
				num(g.X), num(g.Y), num(r), col, num(strokeW))
			b.WriteByte('\n')
			fmt.Fprintf(&b,
				`  <text x="%s" y="%s" font-size="%s" fill="%s" font-family="monospace" stroke="white" stroke-width="%s" paint-order="stroke">%s</text>`,
				num(g.X+r+fontSize*0.25), num(g.Y+fontSize*0.38),
				num(fontSize), col, num(textStrokeW), escape(label))
			b.WriteByte('\n')
		}
	}
	b.WriteString("</g>")

	group := b.String()
	text := string(svg)
	idx := strings.LastIndex(text, "</svg>")
	if idx == -1 {
		return []byte(text + "\n" + group)
	}
	return []byte(text[:idx] + "\n" + group + "\n" + text[idx:])
}

func num(v float64) string {
	return strconv.FormatFloat(geometry.Round2(v), 'f', -1, 64)
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
