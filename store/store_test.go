package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portstudio/core"
)

func newDoc(n int) *core.Document {
	doc := &core.Document{VW: 100, VH: 100}
	for i := 0; i < n; i++ {
		doc.Ports = append(doc.Ports, core.Port{
			ID:       "p",
			Type:     core.Process,
			Geometry: core.Point{X: float64(i * 10), Y: float64(i * 10)},
		})
	}
	return doc
}

// checkSelection asserts the invariant primary == -1 <=> members empty,
// and primary in members otherwise.
func checkSelection(t *testing.T, s *Store) {
	t.Helper()
	members := s.Members()
	if s.Primary() == -1 {
		assert.Empty(t, members)
		return
	}
	assert.Contains(t, members, s.Primary())
}

func TestAddDefaults(t *testing.T) {
	s := New(&core.Document{VW: 80, VH: 40})

	idx := s.Add(core.Port{Type: core.In})
	require.Equal(t, 0, idx)

	p, ok := s.Port(idx)
	require.True(t, ok)
	assert.Equal(t, "in", p.ID)
	assert.Equal(t, core.Point{X: 40, Y: 20}, p.Geometry)

	assert.Equal(t, idx, s.Primary())
	assert.Equal(t, []int{idx}, s.Members())
}

func TestAddRoundsGeometry(t *testing.T) {
	s := New(newDoc(0))
	idx := s.Add(core.Port{ID: "a", Geometry: core.Point{X: 1.2345, Y: 9.876}})

	p, _ := s.Port(idx)
	assert.Equal(t, core.Point{X: 1.23, Y: 9.88}, p.Geometry)
}

func TestSelectReplacesAndToggles(t *testing.T) {
	s := New(newDoc(4))

	s.Select(1, false)
	assert.Equal(t, 1, s.Primary())
	assert.Equal(t, []int{1}, s.Members())

	s.Select(3, true)
	assert.Equal(t, 3, s.Primary())
	assert.Equal(t, []int{1, 3}, s.Members())
	checkSelection(t, s)

	// Toggling the primary off falls back to the nearest member.
	s.Select(3, true)
	assert.Equal(t, 1, s.Primary())
	assert.Equal(t, []int{1}, s.Members())
	checkSelection(t, s)

	s.Select(1, true)
	assert.Equal(t, -1, s.Primary())
	assert.Empty(t, s.Members())
	checkSelection(t, s)
}

func TestSelectOutOfRangeIsNoOp(t *testing.T) {
	s := New(newDoc(2))
	s.Select(5, false)
	assert.Equal(t, -1, s.Primary())
}

func TestStrictModePanics(t *testing.T) {
	s := New(newDoc(1), Strict())
	assert.Panics(t, func() { s.Select(7, false) })
}

func TestDeleteReindexesSurvivors(t *testing.T) {
	s := New(newDoc(5))
	s.Select(0, false)
	s.Select(2, true)
	s.Select(4, true)

	s.Delete([]int{1, 3})

	require.Equal(t, 3, s.Len())
	// Survivors 0, 2, 4 renumber to 0, 1, 2.
	assert.Equal(t, []int{0, 1, 2}, s.Members())
	assert.Equal(t, 2, s.Primary())
	checkSelection(t, s)

	p, _ := s.Port(1)
	assert.Equal(t, core.Point{X: 20, Y: 20}, p.Geometry)
	p, _ = s.Port(2)
	assert.Equal(t, core.Point{X: 40, Y: 40}, p.Geometry)
}

func TestDeletePrimaryClampsToNearestSlot(t *testing.T) {
	s := New(newDoc(3))
	s.Select(2, false)

	s.Delete([]int{2})
	assert.Equal(t, 1, s.Primary())
	assert.Equal(t, []int{1}, s.Members())
	checkSelection(t, s)

	s.Delete([]int{0, 1})
	assert.Equal(t, -1, s.Primary())
	assert.Empty(t, s.Members())
	checkSelection(t, s)
}

func TestDeleteDuplicatesAndStaleIndices(t *testing.T) {
	s := New(newDoc(3))
	s.Delete([]int{1, 1, 9})
	assert.Equal(t, 2, s.Len())
}

func TestDeleteNotifiesWithPreRemovalIndices(t *testing.T) {
	s := New(newDoc(5))
	var got []int
	s.OnDelete(func(deleted []int) { got = deleted })

	s.Delete([]int{3, 1})
	assert.Equal(t, []int{1, 3}, got)
}

func TestUpdateMergesAndRounds(t *testing.T) {
	s := New(newDoc(1))

	id := "vcc"
	typ := core.Signal
	s.Update(0, PortUpdate{ID: &id, Type: &typ, Geometry: core.Point{X: 3.14159, Y: 2.71828}})

	p, _ := s.Port(0)
	assert.Equal(t, "vcc", p.ID)
	assert.Equal(t, core.Signal, p.Type)
	assert.Equal(t, core.Point{X: 3.14, Y: 2.72}, p.Geometry)
}

func TestUpdateLockedGeometryRejected(t *testing.T) {
	s := New(newDoc(1))

	locked := true
	s.Update(0, PortUpdate{Locked: &locked})
	s.Update(0, PortUpdate{Geometry: core.Point{X: 99, Y: 99}})

	p, _ := s.Port(0)
	assert.True(t, p.Locked)
	assert.Equal(t, core.Point{X: 0, Y: 0}, p.Geometry)

	// Unlock and geometry edits apply again, in the same call even.
	unlocked := false
	s.Update(0, PortUpdate{Locked: &unlocked, Geometry: core.Point{X: 99, Y: 99}})
	p, _ = s.Port(0)
	assert.Equal(t, core.Point{X: 99, Y: 99}, p.Geometry)
}

func TestUpdateDegenerateZoneRejected(t *testing.T) {
	doc := &core.Document{VW: 100, VH: 100, Ports: []core.Port{
		{ID: "z", Geometry: core.Zone{X: 10, Y: 10, Width: 20, Height: 20}},
	}}
	s := New(doc)

	s.Update(0, PortUpdate{Geometry: core.Zone{X: 10, Y: 10, Width: 0, Height: 20}})

	p, _ := s.Port(0)
	assert.Equal(t, core.Zone{X: 10, Y: 10, Width: 20, Height: 20}, p.Geometry)
}

func TestRejectedUpdateLeavesHistoryUntouched(t *testing.T) {
	s := New(newDoc(1))

	locked := true
	s.Update(0, PortUpdate{Locked: &locked})

	changes := 0
	s.OnChange(func() { changes++ })

	s.Update(0, PortUpdate{Geometry: core.Point{X: 99, Y: 99}})
	s.Update(0, PortUpdate{Locked: &locked})
	id := "p"
	s.Update(0, PortUpdate{ID: &id})
	assert.Equal(t, 0, changes)

	// One undo reverts the lock itself; the rejected and no-op updates
	// pushed no duplicate snapshots.
	require.True(t, s.Undo())
	p, _ := s.Port(0)
	assert.False(t, p.Locked)
	assert.False(t, s.Undo())
}

func TestConvertGeometryRoundTrip(t *testing.T) {
	s := New(&core.Document{VW: 100, VH: 50, Ports: []core.Port{
		{ID: "a", Geometry: core.Point{X: 30, Y: 25}},
	}})

	s.ConvertGeometry(0)
	p, _ := s.Port(0)
	// 0.2*100 x 0.2*50 centered on (30, 25)
	assert.Equal(t, core.Zone{X: 20, Y: 20, Width: 20, Height: 10}, p.Geometry)

	s.ConvertGeometry(0)
	p, _ = s.Port(0)
	assert.Equal(t, core.Point{X: 30, Y: 25}, p.Geometry)
}

func TestConvertGeometryLockedNoOp(t *testing.T) {
	s := New(&core.Document{VW: 100, VH: 100, Ports: []core.Port{
		{ID: "a", Locked: true, Geometry: core.Point{X: 30, Y: 25}},
	}})

	s.ConvertGeometry(0)
	p, _ := s.Port(0)
	assert.Equal(t, core.Point{X: 30, Y: 25}, p.Geometry)
}

func TestUndoRedo(t *testing.T) {
	s := New(newDoc(1))

	s.Update(0, PortUpdate{Geometry: core.Point{X: 50, Y: 50}})
	s.Update(0, PortUpdate{Geometry: core.Point{X: 70, Y: 70}})

	require.True(t, s.Undo())
	p, _ := s.Port(0)
	assert.Equal(t, core.Point{X: 50, Y: 50}, p.Geometry)

	require.True(t, s.Redo())
	p, _ = s.Port(0)
	assert.Equal(t, core.Point{X: 70, Y: 70}, p.Geometry)

	require.True(t, s.Undo())
	require.True(t, s.Undo())
	p, _ = s.Port(0)
	assert.Equal(t, core.Point{X: 0, Y: 0}, p.Geometry)
	assert.False(t, s.Undo())
}

func TestPausedHistoryCollapsesDragIntoOneStep(t *testing.T) {
	s := New(newDoc(1))

	s.PauseHistory()
	s.Update(0, PortUpdate{Geometry: core.Point{X: 10, Y: 10}})
	s.Update(0, PortUpdate{Geometry: core.Point{X: 20, Y: 20}})
	s.Update(0, PortUpdate{Geometry: core.Point{X: 30, Y: 30}})
	s.ResumeHistory()

	require.True(t, s.Undo())
	p, _ := s.Port(0)
	assert.Equal(t, core.Point{X: 0, Y: 0}, p.Geometry)

	require.True(t, s.Redo())
	p, _ = s.Port(0)
	assert.Equal(t, core.Point{X: 30, Y: 30}, p.Geometry)
}

func TestUndoClampsSelection(t *testing.T) {
	s := New(newDoc(1))
	s.Add(core.Port{ID: "b", Geometry: core.Point{X: 1, Y: 1}})
	require.Equal(t, 1, s.Primary())

	require.True(t, s.Undo())
	assert.Equal(t, 0, s.Primary())
	checkSelection(t, s)
}

func TestRemapIndex(t *testing.T) {
	deleted := []int{1, 3}
	assert.Equal(t, 0, RemapIndex(0, deleted))
	assert.Equal(t, -1, RemapIndex(1, deleted))
	assert.Equal(t, 1, RemapIndex(2, deleted))
	assert.Equal(t, -1, RemapIndex(3, deleted))
	assert.Equal(t, 2, RemapIndex(4, deleted))
}

func TestReplaceResetsSelectionAndHistory(t *testing.T) {
	s := New(newDoc(3))
	s.Select(2, false)
	s.Update(2, PortUpdate{Geometry: core.Point{X: 5, Y: 5}})

	s.Replace(newDoc(1))
	assert.Equal(t, -1, s.Primary())
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Undo())
}
