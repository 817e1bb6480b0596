package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	s := NewStore(5, DefaultPalette())
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
	return s
}

func draw(s *Store, tmpl Stroke, pts ...Point) []string {
	s.BeginStroke(tmpl)
	for _, p := range pts {
		s.AppendPoint(tmpl.LayerID, p)
	}
	return s.EndStroke(tmpl.LayerID)
}

func TestStoreDrawUndoRedo(t *testing.T) {
	s := newTestStore()
	pts := []Point{{0.1, 0.1}, {0.2, 0.25}, {0.3, 0.4}}
	ids := draw(s, Stroke{LayerID: 2, ColorSlot: 0, Size: 8, StrokeEnabled: true}, pts...)
	require.Len(t, ids, 1)

	require.True(t, s.Undo())
	assert.Empty(t, s.Committed())
	assert.Empty(t, s.LayerStrokes(2))

	require.True(t, s.Redo())
	require.Len(t, s.Committed(), 1)
	got := s.Committed()[0]
	assert.Equal(t, ids[0], got.ID)
	assert.Equal(t, pts, got.Points)
	assert.Equal(t, 2, got.LayerID)
	assert.Equal(t, 0, got.ColorSlot)
}

func TestStoreLiveStrokeStaysOutOfHistory(t *testing.T) {
	s := newTestStore()
	s.BeginStroke(Stroke{LayerID: 1, Size: 4, StrokeEnabled: true})
	assert.True(t, s.AppendPoint(1, Point{0.5, 0.5}))
	assert.False(t, s.AppendPoint(1, Point{0.5, 0.5}), "duplicate point dropped")
	assert.True(t, s.AppendPoint(1, Point{0.6, 0.5}))

	assert.Equal(t, 1, s.HistoryDepth())
	assert.Empty(t, s.Committed())
	ls := s.Layer(1)
	require.NotNil(t, ls.Live)
	assert.Len(t, ls.Live.Points, 2)
	assert.Len(t, s.LayerStrokes(1), 1)
	assert.Len(t, s.Strokes(), 1)

	s.CancelStroke(1)
	assert.Nil(t, s.Layer(1).Live)
	assert.Equal(t, 1, s.HistoryDepth())
}

func TestStoreEmptyStrokeDiscarded(t *testing.T) {
	s := newTestStore()
	s.BeginStroke(Stroke{LayerID: 0, Size: 4})
	assert.Nil(t, s.EndStroke(0))
	assert.False(t, s.CanUndo())
}

func TestStoreUnknownLayerIgnored(t *testing.T) {
	s := newTestStore()
	s.BeginStroke(Stroke{LayerID: 9})
	assert.False(t, s.AppendPoint(9, Point{}))
	assert.Nil(t, s.EndStroke(9))
	assert.Empty(t, s.Strokes())
}

func TestStoreSymmetryExpandsOnCommit(t *testing.T) {
	s := newTestStore()
	s.SetSymmetry(SymmetryQuad)
	s.BeginStroke(Stroke{LayerID: 0, Size: 4, StrokeEnabled: true})
	s.AppendPoint(0, Point{0.1, 0.2})
	s.AppendPoint(0, Point{0.3, 0.2})
	assert.Len(t, s.LayerStrokes(0), 4, "live stroke mirrored at render time")
	assert.Len(t, s.Strokes(), 1)

	ids := s.EndStroke(0)
	require.Len(t, ids, 4)
	assert.Len(t, s.Committed(), 4)
	mirrored := s.Committed()[3].Points[0]
	assert.InDelta(t, 0.9, mirrored.X, 1e-9)
	assert.InDelta(t, 0.8, mirrored.Y, 1e-9)

	s.Undo()
	assert.Empty(t, s.Committed(), "mirrors commit as one snapshot")
}

func TestStoreDragCommitsOnEnd(t *testing.T) {
	s := newTestStore()
	draw(s, Stroke{LayerID: 3, Size: 4, StrokeEnabled: true}, Point{0.1, 0.1}, Point{0.2, 0.2})
	draw(s, Stroke{LayerID: 3, Size: 4, StrokeEnabled: true}, Point{0.5, 0.5}, Point{0.6, 0.6})
	depth := s.HistoryDepth()

	require.True(t, s.BeginDrag("s1"))
	assert.Equal(t, "s1", s.Selected())
	s.DragBy(0.1, 0)
	s.DragBy(0.1, 0)
	assert.Equal(t, depth, s.HistoryDepth(), "drag moves do not commit")
	assert.Len(t, s.Layer(3).Committed, 1, "dragged stroke leaves the committed view")
	live := s.LayerStrokes(3)
	require.Len(t, live, 2)
	assert.InDelta(t, 0.3, live[0].Points[0].X, 1e-9, "dragged copy keeps its z-order")

	require.True(t, s.EndDrag())
	assert.Equal(t, depth+1, s.HistoryDepth())
	assert.InDelta(t, 0.3, s.Committed()[0].Points[0].X, 1e-9)
	assert.Equal(t, "s1", s.Committed()[0].ID)

	s.Undo()
	assert.InDelta(t, 0.1, s.Committed()[0].Points[0].X, 1e-9)
}

func TestStoreDragWithoutMoveDoesNotCommit(t *testing.T) {
	s := newTestStore()
	draw(s, Stroke{LayerID: 0, Size: 4}, Point{0.1, 0.1}, Point{0.2, 0.2})
	depth := s.HistoryDepth()
	require.True(t, s.BeginDrag("s1"))
	assert.False(t, s.EndDrag())
	assert.Equal(t, depth, s.HistoryDepth())
	assert.False(t, s.BeginDrag("missing"))
}

func TestStoreEraseStroke(t *testing.T) {
	s := newTestStore()
	draw(s, Stroke{LayerID: 0, Size: 4}, Point{0.1, 0.1}, Point{0.2, 0.2})
	draw(s, Stroke{LayerID: 1, Size: 4}, Point{0.1, 0.1}, Point{0.2, 0.2})
	s.Select("s1")
	require.True(t, s.EraseStroke("s1"))
	assert.Equal(t, "", s.Selected())
	require.Len(t, s.Committed(), 1)
	assert.Equal(t, "s2", s.Committed()[0].ID)
	assert.False(t, s.EraseStroke("s1"))
}

func TestStoreLayerVersions(t *testing.T) {
	s := newTestStore()
	v0, v1 := s.LayerVersion(0), s.LayerVersion(1)
	draw(s, Stroke{LayerID: 1, Size: 4}, Point{0.1, 0.1}, Point{0.2, 0.2})
	assert.Equal(t, v0, s.LayerVersion(0))
	assert.Greater(t, s.LayerVersion(1), v1)

	v1 = s.LayerVersion(1)
	s.Undo()
	assert.Greater(t, s.LayerVersion(1), v1)
	assert.Equal(t, v0, s.LayerVersion(0))

	v0 = s.LayerVersion(0)
	s.SetPaletteColor(0, OverrideColor)
	assert.Greater(t, s.LayerVersion(0), v0, "palette edits invalidate every layer")
}

func TestStoreResetAndReplace(t *testing.T) {
	s := newTestStore()
	draw(s, Stroke{LayerID: 0, Size: 4}, Point{0.1, 0.1}, Point{0.2, 0.2})
	s.Reset()
	assert.Empty(t, s.Committed())
	require.True(t, s.Undo(), "reset is undoable")
	assert.Len(t, s.Committed(), 1)

	s.Replace([]Stroke{line(7, 0, 0, 1, 1), line(-2, 0, 0, 1, 1)})
	assert.False(t, s.CanUndo())
	require.Len(t, s.Committed(), 2)
	assert.Equal(t, 4, s.Committed()[0].LayerID)
	assert.Equal(t, 0, s.Committed()[1].LayerID)
	assert.NotEmpty(t, s.Committed()[0].ID)
}
