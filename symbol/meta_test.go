package symbol

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portstudio/core"
)

func TestMetaRoundTripPreservesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resistor.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"name": "Resistor",
		"creator": "someone",
		"element_count": 7,
		"snap_points": [{"id": "in", "x": 0, "y": 12}]
	}`), 0o644))

	meta, err := ReadMeta(path)
	require.NoError(t, err)
	assert.Equal(t, "Resistor", meta.Name())

	ports, err := meta.Ports()
	require.NoError(t, err)
	require.Len(t, ports, 1)
	assert.Equal(t, core.In, ports[0].Type)

	meta.SetPorts([]core.Port{
		{ID: "out", Type: core.Out, Geometry: core.Point{X: 80, Y: 12}},
	})
	meta.SetCompleted(true)
	require.NoError(t, meta.Write(path))

	back, err := ReadMeta(path)
	require.NoError(t, err)
	assert.True(t, back.Completed())

	// Keys this tool does not model survive the rewrite.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"creator"`)
	assert.Contains(t, string(data), `"element_count"`)

	ports, err = back.Ports()
	require.NoError(t, err)
	require.Len(t, ports, 1)
	assert.Equal(t, "out", ports[0].ID)
}

func TestSetCompletedFalseRemovesKey(t *testing.T) {
	m := NewMeta()
	m.SetCompleted(true)
	assert.True(t, m.Completed())

	m.SetCompleted(false)
	assert.False(t, m.Completed())

	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")
	require.NoError(t, m.Write(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "completed")
}

func TestLoadWithMissingSidecar(t *testing.T) {
	dir := t.TempDir()
	svgPath := filepath.Join(dir, "lamp.svg")
	require.NoError(t, os.WriteFile(svgPath,
		[]byte(`<svg viewBox="0 0 80 80"><circle r="10"/></svg>`), 0o644))

	doc, meta, err := Load(svgPath)
	require.NoError(t, err)
	assert.Equal(t, 80.0, doc.VW)
	assert.Empty(t, doc.Ports)
	require.NotNil(t, meta)
	assert.False(t, meta.Completed())
}

func TestLoadWithSidecar(t *testing.T) {
	dir := t.TempDir()
	svgPath := filepath.Join(dir, "valve.svg")
	require.NoError(t, os.WriteFile(svgPath,
		[]byte(`<svg width="100" height="50"></svg>`), 0o644))
	require.NoError(t, os.WriteFile(MetaPath(svgPath),
		[]byte(`{"snap_points": [{"id": "in", "x": 0, "y": 25}, {"id": "out", "x": 100, "y": 25}]}`), 0o644))

	doc, _, err := Load(svgPath)
	require.NoError(t, err)
	assert.Equal(t, 100.0, doc.VW)
	assert.Equal(t, 50.0, doc.VH)
	require.Len(t, doc.Ports, 2)
	assert.Equal(t, core.Point{X: 100, Y: 25}, doc.Ports[1].Geometry)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("lib", "valve.json"), MetaPath(filepath.Join("lib", "valve.svg")))
	assert.Equal(t, filepath.Join("lib", "valve_debug.svg"), DebugPath(filepath.Join("lib", "valve.svg")))
}
