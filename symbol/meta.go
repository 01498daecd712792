package symbol

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"portstudio/core"
)

// Meta is a symbol's sidecar JSON file. Keys this tool does not
// understand are held as raw JSON so they survive a load/save round trip.
type Meta struct {
	fields map[string]json.RawMessage
}

// NewMeta returns an empty sidecar, for symbols annotated the first time.
func NewMeta() *Meta {
	return &Meta{fields: make(map[string]json.RawMessage)}
}

// ReadMeta loads a sidecar file.
func ReadMeta(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := NewMeta()
	if err := json.Unmarshal(data, &m.fields); err != nil {
		return nil, fmt.Errorf("symbol: %s: %w", path, err)
	}
	return m, nil
}

// Write saves the sidecar, pretty-printed with a trailing newline.
func (m *Meta) Write(path string) error {
	data, err := json.MarshalIndent(m.fields, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Name returns the symbol's display name, or "".
func (m *Meta) Name() string { return m.str("name") }

// Completed reports whether the symbol is marked done.
func (m *Meta) Completed() bool { return m.boolean("completed") }

// SetCompleted marks the symbol's completion status. A false value
// removes the key rather than writing an explicit false.
func (m *Meta) SetCompleted(done bool) {
	if !done {
		delete(m.fields, "completed")
		return
	}
	m.set("completed", true)
}

// Flag returns the symbol's review flag, or "".
func (m *Meta) Flag() string { return m.str("flag") }

// Ports decodes the symbol's port records.
func (m *Meta) Ports() ([]core.Port, error) {
	raw, ok := m.fields["snap_points"]
	if !ok {
		return nil, nil
	}
	var recs []PortJSON
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPort, err)
	}
	return DecodePorts(recs)
}

// SetPorts replaces the symbol's port records.
func (m *Meta) SetPorts(ports []core.Port) {
	m.set("snap_points", EncodePorts(ports))
}

func (m *Meta) set(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	m.fields[key] = raw
}

func (m *Meta) str(key string) string {
	var s string
	if raw, ok := m.fields[key]; ok {
		json.Unmarshal(raw, &s)
	}
	return s
}

func (m *Meta) boolean(key string) bool {
	var b bool
	if raw, ok := m.fields[key]; ok {
		json.Unmarshal(raw, &b)
	}
	return b
}

// MetaPath returns the sidecar path next to an SVG file.
func MetaPath(svgPath string) string {
	return strings.TrimSuffix(svgPath, filepath.Ext(svgPath)) + ".json"
}

// DebugPath returns the path of the generated overlay SVG.
func DebugPath(svgPath string) string {
	stem := strings.TrimSuffix(svgPath, filepath.Ext(svgPath))
	return stem + "_debug.svg"
}

// Load opens a symbol: the SVG supplies the document size, the sidecar
// (when present) supplies the ports. A missing sidecar yields an empty
// annotation set, not an error.
func Load(svgPath string) (*core.Document, *Meta, error) {
	svg, err := os.ReadFile(svgPath)
	if err != nil {
		return nil, nil, err
	}
	vw, vh, err := ParseSVGSize(svg)
	if err != nil {
		return nil, nil, err
	}

	meta, err := ReadMeta(MetaPath(svgPath))
	if os.IsNotExist(err) {
		meta = NewMeta()
	} else if err != nil {
		return nil, nil, err
	}

	ports, err := meta.Ports()
	if err != nil {
		return nil, nil, err
	}
	return &core.Document{VW: vw, VH: vh, Ports: ports}, meta, nil
}
