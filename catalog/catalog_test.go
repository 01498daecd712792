package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSymbol lays down an SVG plus sidecar under root at the given
// slash-separated id.
func writeSymbol(t *testing.T, root, id, meta string) {
	t.Helper()
	base := filepath.Join(root, filepath.FromSlash(id))
	require.NoError(t, os.MkdirAll(filepath.Dir(base), 0o755))
	require.NoError(t, os.WriteFile(base+".svg",
		[]byte(`<svg viewBox="0 0 80 80"></svg>`), 0o644))
	require.NoError(t, os.WriteFile(base+".json", []byte(meta), 0o644))
}

func TestScanListsAndClassifies(t *testing.T) {
	root := t.TempDir()
	writeSymbol(t, root, "iec/valves/ball_valve", `{"completed": true}`)
	writeSymbol(t, root, "iec/pumps/pump", `{}`)
	writeSymbol(t, root, "legacy/iso/valves/gate_valve", `{"flag": "unclear"}`)

	// Debug artifacts and the registry are not symbols.
	require.NoError(t, os.WriteFile(filepath.Join(root, "iec", "valves", "ball_valve_debug.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "registry.json"), []byte(`broken`), 0o644))

	entries, err := New(root).List()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "iec/pumps/pump", entries[0].Path)
	assert.Equal(t, "iec", entries[0].Standard)
	assert.Equal(t, "pumps", entries[0].Category)
	assert.Empty(t, entries[0].Source)

	assert.True(t, entries[1].Completed)
	assert.Equal(t, "ball_valve", entries[1].Name)

	// Four-segment ids lead with the source collection.
	assert.Equal(t, "legacy", entries[2].Source)
	assert.Equal(t, "iso", entries[2].Standard)
	assert.Equal(t, "valves", entries[2].Category)
	assert.Equal(t, "unclear", entries[2].Flag)
}

func TestRegistryTakesPrecedence(t *testing.T) {
	root := t.TempDir()
	writeSymbol(t, root, "iec/valves/ball_valve", `{"completed": true}`)
	writeSymbol(t, root, "iec/valves/orphan", `{}`)

	registry := `{"symbols": [
		{"id": "iec/valves/ball_valve", "display_name": "Ball Valve", "standard": "IEC"},
		{"id": "iec/valves/missing_on_disk"}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "registry.json"), []byte(registry), 0o644))

	entries, err := New(root).List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Ball Valve", entries[0].Name)
	assert.Equal(t, "iec", entries[0].Standard)
	assert.True(t, entries[0].Completed)
}

func TestResolveRejectsTraversal(t *testing.T) {
	c := New(t.TempDir())

	for _, id := range []string{"", "../etc/passwd", "a/../../b", "/abs/path", `a\b`} {
		_, err := c.Resolve(id)
		assert.ErrorIs(t, err, ErrInvalidPath, "id=%q", id)
	}

	p, err := c.Resolve("iec/valves/ball_valve")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.Root(), "iec", "valves", "ball_valve.svg"), p)
}

func TestStats(t *testing.T) {
	root := t.TempDir()
	writeSymbol(t, root, "iec/valves/a", `{"completed": true}`)
	writeSymbol(t, root, "iec/valves/b", `{}`)
	writeSymbol(t, root, "iec/pumps/c", `{"completed": true}`)
	writeSymbol(t, root, "iso/valves/d", `{}`)

	st, err := New(root).Stats()
	require.NoError(t, err)

	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 2, st.Completed)
	assert.Equal(t, 50.0, st.Percentage)
	assert.Equal(t, GroupStat{Total: 3, Completed: 2}, st.ByStandard["iec"])
	assert.Equal(t, GroupStat{Total: 1, Completed: 0}, st.ByStandard["iso"])
	assert.Equal(t, GroupStat{Total: 3, Completed: 1}, st.ByCategory["valves"])
	assert.Equal(t, GroupStat{Total: 1, Completed: 1}, st.ByCategory["pumps"])
}
