package state

import "slices"

// Point is a position in normalized viewport space. The nominal range is
// [0,1] on both axes but values are not clamped: strokes may reach into the
// overscan margin or beyond.
type Point struct{ X, Y float64 }

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Tool discriminates how a stroke is composited into its layer.
type Tool uint8

const (
	ToolBrush Tool = iota
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolBrush:
		return "BRUSH"
	case ToolEraser:
		return "ERASER"
	default:
		return "UNKNOWN"
	}
}

// BlendMode is the closed set of compositing modes a stroke, fill or layer
// may use. The mapping to pixel math lives in the raster package.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendOverlay
	BlendDifference
)

var blendNames = [...]string{"normal", "multiply", "overlay", "difference"}

func (b BlendMode) String() string {
	if int(b) < len(blendNames) {
		return blendNames[b]
	}
	return "normal"
}

// ParseBlendMode returns the mode named s. Unknown names yield BlendNormal
// and false.
func ParseBlendMode(s string) (BlendMode, bool) {
	for i, name := range blendNames {
		if name == s {
			return BlendMode(i), true
		}
	}
	return BlendNormal, false
}

// SlotNone is the reserved palette index meaning "no palette color"; the
// renderer substitutes the override color for it.
const SlotNone = -1

// Stroke is one authored polyline on a single layer.
//
// A stroke with an empty ID is live: it is still being drawn or dragged and
// has not been committed to history.
type Stroke struct {
	ID            string
	Points        []Point
	ColorSlot     int
	FillColorSlot *int // nil means no fill
	Size          float64
	Tool          Tool
	LayerID       int
	BlendMode     BlendMode
	FillBlendMode BlendMode
	StrokeEnabled bool
}

// FillSlot returns a fill slot reference for use in Stroke.FillColorSlot.
func FillSlot(slot int) *int { return &slot }

// Renders reports whether the stroke produces any pixels.
func (s Stroke) Renders() bool { return len(s.Points) >= 2 }

// HasFill reports whether a fill pass applies to the stroke.
func (s Stroke) HasFill() bool { return s.FillColorSlot != nil && *s.FillColorSlot >= 0 }

// Outlined reports whether the stroke pass applies. Erasers always stroke.
func (s Stroke) Outlined() bool { return s.StrokeEnabled || s.Tool == ToolEraser }

// Clone returns a deep copy that shares no memory with s.
func (s Stroke) Clone() Stroke {
	c := s
	c.Points = slices.Clone(s.Points)
	if s.FillColorSlot != nil {
		c.FillColorSlot = FillSlot(*s.FillColorSlot)
	}
	return c
}

// Translate moves every point by (dx, dy) in place.
func (s *Stroke) Translate(dx, dy float64) {
	for i := range s.Points {
		s.Points[i] = s.Points[i].Add(dx, dy)
	}
}

// Equal reports whether two strokes carry identical data.
func (s Stroke) Equal(o Stroke) bool {
	if s.ID != o.ID || s.ColorSlot != o.ColorSlot || s.Size != o.Size ||
		s.Tool != o.Tool || s.LayerID != o.LayerID || s.BlendMode != o.BlendMode ||
		s.FillBlendMode != o.FillBlendMode || s.StrokeEnabled != o.StrokeEnabled {
		return false
	}
	if (s.FillColorSlot == nil) != (o.FillColorSlot == nil) {
		return false
	}
	if s.FillColorSlot != nil && *s.FillColorSlot != *o.FillColorSlot {
		return false
	}
	return slices.Equal(s.Points, o.Points)
}

// CloneStrokes deep-copies a stroke list.
func CloneStrokes(in []Stroke) []Stroke {
	if in == nil {
		return nil
	}
	out := make([]Stroke, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
