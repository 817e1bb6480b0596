package studio

import (
	"ParallaxSketch/internal/motion"
	"ParallaxSketch/internal/state"
)

// Tool is the active pointer tool.
type Tool uint8

const (
	ToolBrush Tool = iota
	ToolEraser
	ToolSelect
	ToolPicker
)

var toolNames = [...]string{"BRUSH", "ERASER", "SELECT", "PICKER"}

func (t Tool) String() string {
	if int(t) < len(toolNames) {
		return toolNames[t]
	}
	return "BRUSH"
}

// EraserMode selects how the eraser works.
type EraserMode uint8

const (
	// EraserStandard paints a punch-through stroke.
	EraserStandard EraserMode = iota
	// EraserStroke removes the whole stroke under the pointer.
	EraserStroke
)

// Brush holds the settings copied into every new stroke.
type Brush struct {
	Size          float64
	ColorSlot     int
	FillSlot      int
	Fill          bool
	StrokeEnabled bool
	Blend         state.BlendMode
	FillBlend     state.BlendMode
}

// DefaultBrush returns a 10px outline brush on the first two slots.
func DefaultBrush() Brush {
	return Brush{Size: 10, ColorSlot: 0, FillSlot: 1, StrokeEnabled: true}
}

type gesture uint8

const (
	gestureNone gesture = iota
	gestureDraw
	gestureDrag
)

// point converts a viewport pixel position to the normalized point under
// the user's finger on the active layer.
func (s *Studio) point(x, y float64) state.Point {
	x, y = s.comp.Correct(x, y, s.comp.ActiveLayer, s.ctrl.Current())
	if s.Grid.Enabled && s.Grid.Snap {
		x = state.Snap(x, s.Grid.Size)
		y = state.Snap(y, s.Grid.Size)
	}
	return s.vp.Normalize(x, y)
}

func (s *Studio) template() state.Stroke {
	st := state.Stroke{
		ColorSlot:     s.Brush.ColorSlot,
		Size:          s.Brush.Size,
		LayerID:       s.comp.ActiveLayer,
		BlendMode:     s.Brush.Blend,
		FillBlendMode: s.Brush.FillBlend,
		StrokeEnabled: s.Brush.StrokeEnabled,
	}
	if s.Tool == ToolEraser {
		st.Tool = state.ToolEraser
		st.StrokeEnabled = true
		return st
	}
	if s.Brush.Fill {
		st.FillColorSlot = state.FillSlot(s.Brush.FillSlot)
	}
	return st
}

func (s *Studio) hit(p state.Point) (state.Stroke, bool) {
	return state.HitTest(s.store.Strokes(), p, s.comp.ActiveLayer, s.vp)
}

// PointerMove feeds the hover position to the controller and extends an
// active stroke or drag.
func (s *Studio) PointerMove(x, y float64) {
	s.ctrl.SetPointer(motion.PointerOffset(x, y, s.vp.Width, s.vp.Height))
	switch s.gesture {
	case gestureDraw:
		s.store.AppendPoint(s.comp.ActiveLayer, s.point(x, y))
	case gestureDrag:
		p := s.point(x, y)
		s.store.DragBy(p.X-s.last.X, p.Y-s.last.Y)
		s.last = p
	}
}

// PointerDown starts a gesture for the active tool.
func (s *Studio) PointerDown(x, y float64) {
	if !s.vp.Valid() {
		return
	}
	s.cancelGesture()
	p := s.point(x, y)

	switch {
	case s.Tool == ToolSelect:
		st, ok := s.hit(p)
		if !ok {
			s.store.Select("")
			return
		}
		if s.store.BeginDrag(st.ID) {
			s.gesture = gestureDrag
			s.last = p
		}
	case s.Tool == ToolPicker:
		if st, ok := s.hit(p); ok {
			s.Brush.ColorSlot = st.ColorSlot
			if st.FillColorSlot != nil {
				s.Brush.FillSlot = *st.FillColorSlot
			}
		}
	case s.Tool == ToolEraser && s.EraserMode == EraserStroke:
		if st, ok := s.hit(p); ok {
			s.store.EraseStroke(st.ID)
		}
	default:
		s.store.BeginStroke(s.template())
		s.store.AppendPoint(s.comp.ActiveLayer, p)
		s.gesture = gestureDraw
	}
}

// PointerUp commits the gesture in progress.
func (s *Studio) PointerUp() {
	switch s.gesture {
	case gestureDraw:
		s.store.EndStroke(s.comp.ActiveLayer)
	case gestureDrag:
		s.store.EndDrag()
	}
	s.gesture = gestureNone
}

// PointerCancel abandons the gesture in progress.
func (s *Studio) PointerCancel() { s.cancelGesture() }

func (s *Studio) cancelGesture() {
	switch s.gesture {
	case gestureDraw:
		s.store.CancelStroke(s.comp.ActiveLayer)
	case gestureDrag:
		s.store.CancelDrag()
	}
	s.gesture = gestureNone
}
