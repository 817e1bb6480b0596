package state

import (
	"image/color"
	"slices"

	"github.com/google/uuid"

	"ParallaxSketch/internal/logging"
)

// LayerState is what one layer displays: the committed snapshot for that
// layer plus at most one live (uncommitted) stroke, merged only at render
// time.
type LayerState struct {
	Committed []Stroke
	Live      *Stroke
}

type dragState struct {
	id    string
	layer int
	moved bool
}

// Store owns the committed stroke history and the live interaction overlay.
// Live mutations (points appended, drag deltas) never touch history; only
// commit actions create snapshots. All methods run on the single UI thread.
type Store struct {
	history  *History
	layers   int
	live     []*Stroke
	drag     *dragState
	selected string
	palette  Palette
	symmetry SymmetryMode
	clock    *Clock
	newID    func() string
}

// NewStore creates an empty store for the given number of layers.
func NewStore(layers int, palette Palette) *Store {
	return &Store{
		history: NewHistory(DefaultHistoryLimit),
		layers:  layers,
		live:    make([]*Stroke, layers),
		palette: palette.Clone(),
		clock:   newClock(layers),
		newID:   uuid.NewString,
	}
}

// Layers returns the number of depth layers.
func (s *Store) Layers() int { return s.layers }

// Version returns the global change counter.
func (s *Store) Version() uint64 { return s.clock.Now() }

// LayerVersion returns the change counter of layer i.
func (s *Store) LayerVersion(i int) uint64 { return s.clock.Layer(i) }

// Palette returns the active palette. Callers must not modify it.
func (s *Store) Palette() Palette { return s.palette }

// SetPalette replaces the palette and invalidates every layer.
func (s *Store) SetPalette(p Palette) {
	s.palette = p.Clone()
	s.clock.TouchAll()
}

// SetPaletteColor replaces one palette slot.
func (s *Store) SetPaletteColor(slot int, c color.NRGBA) {
	s.SetPalette(s.palette.With(slot, c))
}

// Symmetry returns the active symmetry mode.
func (s *Store) Symmetry() SymmetryMode { return s.symmetry }

// SetSymmetry changes how newly drawn strokes are mirrored.
func (s *Store) SetSymmetry(m SymmetryMode) {
	s.symmetry = m
	for i, l := range s.live {
		if l != nil && l.ID == "" {
			s.clock.Touch(i)
		}
	}
}

// Committed returns the snapshot at the history cursor. Read-only.
func (s *Store) Committed() []Stroke { return s.history.Current() }

func (s *Store) CanUndo() bool { return s.history.CanUndo() }
func (s *Store) CanRedo() bool { return s.history.CanRedo() }

// HistoryDepth returns the number of stored snapshots.
func (s *Store) HistoryDepth() int { return s.history.Len() }

// Selected returns the id of the selected stroke, or "".
func (s *Store) Selected() string { return s.selected }

// Select marks the stroke with the given id as selected ("" clears).
func (s *Store) Select(id string) {
	if id == s.selected {
		return
	}
	s.touchStroke(s.selected)
	s.selected = id
	s.touchStroke(id)
}

// Find returns the committed stroke with the given id.
func (s *Store) Find(id string) (Stroke, bool) {
	if id == "" {
		return Stroke{}, false
	}
	for _, st := range s.history.Current() {
		if st.ID == id {
			return st, true
		}
	}
	return Stroke{}, false
}

func (s *Store) touchStroke(id string) {
	if st, ok := s.Find(id); ok {
		s.clock.Touch(st.LayerID)
	}
}

func (s *Store) validLayer(i int) bool { return i >= 0 && i < s.layers }

// Layer returns the committed and live state of layer i.
func (s *Store) Layer(i int) LayerState {
	if !s.validLayer(i) {
		return LayerState{}
	}
	var committed []Stroke
	for _, st := range s.history.Current() {
		if st.LayerID != i || s.isDragged(st.ID) {
			continue
		}
		committed = append(committed, st)
	}
	return LayerState{Committed: committed, Live: s.live[i]}
}

func (s *Store) isDragged(id string) bool { return s.drag != nil && s.drag.id == id }

// LayerStrokes returns layer i's strokes in render order: committed strokes
// (a dragged stroke replaced in place by its live copy) followed by the live
// drawing stroke and its symmetry mirrors.
func (s *Store) LayerStrokes(i int) []Stroke {
	if !s.validLayer(i) {
		return nil
	}
	var out []Stroke
	for _, st := range s.history.Current() {
		if st.LayerID != i {
			continue
		}
		if s.isDragged(st.ID) && s.live[i] != nil {
			out = append(out, *s.live[i])
			continue
		}
		out = append(out, st)
	}
	if l := s.live[i]; l != nil && l.ID == "" {
		out = append(out, *l)
		out = append(out, MirrorStroke(*l, s.symmetry)...)
	}
	return out
}

// Strokes returns the full displayed list across layers: the committed
// snapshot with any drag applied, followed by live drawing strokes.
func (s *Store) Strokes() []Stroke {
	cur := s.history.Current()
	out := make([]Stroke, 0, len(cur)+1)
	for _, st := range cur {
		if s.isDragged(st.ID) && s.live[st.LayerID] != nil {
			out = append(out, *s.live[st.LayerID])
			continue
		}
		out = append(out, st)
	}
	for _, l := range s.live {
		if l != nil && l.ID == "" {
			out = append(out, *l)
		}
	}
	return out
}

// BeginStroke starts a live stroke on tmpl.LayerID, replacing any live
// stroke already on that layer.
func (s *Store) BeginStroke(tmpl Stroke) {
	if !s.validLayer(tmpl.LayerID) {
		logging.Logger().Warn("stroke on unknown layer ignored", "layer", tmpl.LayerID)
		return
	}
	s.CancelDrag()
	st := tmpl.Clone()
	st.ID = ""
	s.live[st.LayerID] = &st
	s.Select("")
	s.clock.Touch(st.LayerID)
}

// AppendPoint extends the live stroke on layer. Repeated points are dropped.
func (s *Store) AppendPoint(layer int, p Point) bool {
	if !s.validLayer(layer) {
		return false
	}
	l := s.live[layer]
	if l == nil || l.ID != "" {
		return false
	}
	if n := len(l.Points); n > 0 && l.Points[n-1] == p {
		return false
	}
	l.Points = append(l.Points, p)
	s.clock.Touch(layer)
	return true
}

// LiveStroke returns the live drawing stroke on layer, if any.
func (s *Store) LiveStroke(layer int) (Stroke, bool) {
	if !s.validLayer(layer) || s.live[layer] == nil || s.live[layer].ID != "" {
		return Stroke{}, false
	}
	return *s.live[layer], true
}

// EndStroke commits the live stroke on layer (plus symmetry mirrors) and
// returns the ids it was assigned. A stroke with no points is discarded.
func (s *Store) EndStroke(layer int) []string {
	l, ok := s.LiveStroke(layer)
	if !ok {
		return nil
	}
	s.live[layer] = nil
	if len(l.Points) == 0 {
		s.clock.Touch(layer)
		return nil
	}
	added := append([]Stroke{l}, MirrorStroke(l, s.symmetry)...)
	ids := make([]string, len(added))
	for i := range added {
		added[i].ID = s.newID()
		ids[i] = added[i].ID
	}
	next := append(slices.Clone(s.history.Current()), added...)
	s.commit(next)
	s.clock.Touch(layer)
	return ids
}

// CancelStroke discards the live stroke on layer without committing.
func (s *Store) CancelStroke(layer int) {
	if _, ok := s.LiveStroke(layer); ok {
		s.live[layer] = nil
		s.clock.Touch(layer)
	}
}

// BeginDrag starts moving the committed stroke id. The stroke becomes
// selected and a live copy takes its place until EndDrag.
func (s *Store) BeginDrag(id string) bool {
	st, ok := s.Find(id)
	if !ok || !s.validLayer(st.LayerID) {
		return false
	}
	s.CancelDrag()
	s.Select(id)
	c := st.Clone()
	s.live[st.LayerID] = &c
	s.drag = &dragState{id: id, layer: st.LayerID}
	s.clock.Touch(st.LayerID)
	return true
}

// DragBy translates the dragged stroke by a normalized delta.
func (s *Store) DragBy(dx, dy float64) {
	if s.drag == nil || (dx == 0 && dy == 0) {
		return
	}
	s.live[s.drag.layer].Translate(dx, dy)
	s.drag.moved = true
	s.clock.Touch(s.drag.layer)
}

// EndDrag commits the dragged stroke's new position. It reports whether a
// snapshot was created.
func (s *Store) EndDrag() bool {
	if s.drag == nil {
		return false
	}
	d, moved := *s.drag, s.drag.moved
	l := s.live[d.layer]
	s.drag = nil
	s.live[d.layer] = nil
	s.clock.Touch(d.layer)
	if !moved || l == nil {
		return false
	}
	next := slices.Clone(s.history.Current())
	for i := range next {
		if next[i].ID == d.id {
			next[i] = *l
		}
	}
	s.commit(next)
	return true
}

// CancelDrag abandons a drag in progress.
func (s *Store) CancelDrag() {
	if s.drag == nil {
		return
	}
	s.live[s.drag.layer] = nil
	s.clock.Touch(s.drag.layer)
	s.drag = nil
}

// Dragging reports whether a drag is in progress.
func (s *Store) Dragging() bool { return s.drag != nil }

// EraseStroke removes the whole committed stroke id.
func (s *Store) EraseStroke(id string) bool {
	if _, ok := s.Find(id); !ok {
		return false
	}
	if s.isDragged(id) {
		s.CancelDrag()
	}
	if s.selected == id {
		s.selected = ""
	}
	next := slices.DeleteFunc(slices.Clone(s.history.Current()), func(st Stroke) bool { return st.ID == id })
	s.commit(next)
	return true
}

// Undo steps back one snapshot.
func (s *Store) Undo() bool {
	s.CancelDrag()
	prev := s.history.Current()
	if !s.history.Undo() {
		return false
	}
	s.clock.Touch(s.diffLayers(prev, s.history.Current())...)
	return true
}

// Redo steps forward one snapshot.
func (s *Store) Redo() bool {
	s.CancelDrag()
	prev := s.history.Current()
	if !s.history.Redo() {
		return false
	}
	s.clock.Touch(s.diffLayers(prev, s.history.Current())...)
	return true
}

// Reset clears the canvas as an undoable commit.
func (s *Store) Reset() {
	s.CancelDrag()
	for i := range s.live {
		s.live[i] = nil
	}
	s.selected = ""
	s.commit(nil)
	s.clock.TouchAll()
}

// Replace discards history and starts from strokes, as after an import.
// Strokes on unknown layers are moved to the nearest valid layer.
func (s *Store) Replace(strokes []Stroke) {
	s.CancelDrag()
	for i := range s.live {
		s.live[i] = nil
	}
	s.selected = ""
	next := CloneStrokes(strokes)
	for i := range next {
		if next[i].ID == "" {
			next[i].ID = s.newID()
		}
		if !s.validLayer(next[i].LayerID) {
			next[i].LayerID = min(max(next[i].LayerID, 0), s.layers-1)
		}
	}
	s.history.Reset(next)
	s.clock.TouchAll()
}

func (s *Store) commit(next []Stroke) {
	prev := s.history.Current()
	s.history.Commit(next)
	s.clock.Touch(s.diffLayers(prev, s.history.Current())...)
}

// diffLayers reports which layers display different strokes between two
// snapshots.
func (s *Store) diffLayers(prev, next []Stroke) []int {
	a, b := s.byLayer(prev), s.byLayer(next)
	var changed []int
	for i := 0; i < s.layers; i++ {
		if !slices.EqualFunc(a[i], b[i], Stroke.Equal) {
			changed = append(changed, i)
		}
	}
	return changed
}

func (s *Store) byLayer(list []Stroke) [][]Stroke {
	out := make([][]Stroke, s.layers)
	for _, st := range list {
		if s.validLayer(st.LayerID) {
			out[st.LayerID] = append(out[st.LayerID], st)
		}
	}
	return out
}
