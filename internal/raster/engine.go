// Package raster keeps one offscreen pixel buffer per depth layer and redraws
// it from the stroke list whenever that layer's version changes.
package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"

	"ParallaxSketch/internal/logging"
	"ParallaxSketch/internal/state"
)

// GlowRadius is the blur radius of the shadow drawn under a selected stroke.
const GlowRadius = 10

var glowColor = color.NRGBA{A: 255}

// Source is the read side of the stroke store the engine draws from.
type Source interface {
	Layers() int
	LayerVersion(i int) uint64
	LayerStrokes(i int) []state.Stroke
	Palette() state.Palette
	Selected() string
}

// Layer is one depth layer's buffer. Generation increases every time the
// buffer is redrawn so downstream caches can key on it.
type Layer struct {
	Image      *image.NRGBA
	Generation uint64

	version uint64
	drawn   bool
}

// Engine owns the layer buffers. It is the only writer; everything else
// reads the images returned by Layer.
type Engine struct {
	vp     state.Viewport
	layers []*Layer
	gen    uint64

	dc *gg.Context
	pm *gg.Pixmap
}

// NewEngine creates an engine for the given viewport. Buffers are allocated
// on the first Sync.
func NewEngine(vp state.Viewport) *Engine {
	return &Engine{vp: vp}
}

// Viewport returns the viewport the buffers are sized for.
func (e *Engine) Viewport() state.Viewport { return e.vp }

// Resize records a new viewport. Mismatched buffers are reallocated lazily
// on the next Sync, never read stale.
func (e *Engine) Resize(vp state.Viewport) {
	e.vp = vp
}

// Layer returns the buffer for layer i, or nil if it has not been drawn.
func (e *Engine) Layer(i int) *Layer {
	if i < 0 || i >= len(e.layers) || !e.layers[i].drawn {
		return nil
	}
	return e.layers[i]
}

// Sync redraws every layer whose version or size no longer matches src and
// returns the indices it redrew.
func (e *Engine) Sync(src Source) []int {
	if !e.vp.Valid() {
		return nil
	}
	n := src.Layers()
	for len(e.layers) < n {
		e.layers = append(e.layers, &Layer{})
	}
	e.layers = e.layers[:n]

	w, h := e.vp.BufferSize()
	size := image.Rect(0, 0, w, h)
	if e.pm == nil || e.pm.Width() != w || e.pm.Height() != h {
		e.pm = gg.NewPixmap(w, h)
		e.dc = gg.NewContext(w, h, gg.WithPixmap(e.pm))
		logging.Logger().Debug("raster scratch allocated", "width", w, "height", h)
	}

	var redrawn []int
	for i, l := range e.layers {
		v := src.LayerVersion(i)
		stale := l.Image == nil || l.Image.Rect != size
		if stale {
			l.Image = image.NewNRGBA(size)
		}
		if !stale && l.drawn && l.version == v {
			continue
		}
		e.draw(l.Image, src.LayerStrokes(i), src.Palette(), src.Selected())
		e.gen++
		l.Generation = e.gen
		l.version = v
		l.drawn = true
		redrawn = append(redrawn, i)
	}
	if len(redrawn) > 0 {
		logging.Logger().Debug("layers redrawn", "layers", redrawn)
	}
	return redrawn
}

func (e *Engine) draw(dst *image.NRGBA, strokes []state.Stroke, pal state.Palette, selected string) {
	clear(dst.Pix)
	for _, s := range strokes {
		if !s.Renders() {
			continue
		}
		if selected != "" && s.ID == selected && s.Tool == state.ToolBrush {
			if m := e.coverage(s, false, GlowRadius*3); m != nil {
				Paint(dst, BlurMask(m, GlowRadius/2.0), glowColor, state.BlendNormal)
			}
		}
		if s.HasFill() && s.Tool == state.ToolBrush {
			if c, ok := pal.Color(*s.FillColorSlot); ok {
				if m := e.coverage(s, true, 0); m != nil {
					Paint(dst, m, c, s.FillBlendMode)
				}
			}
		}
		if !s.Outlined() {
			continue
		}
		m := e.coverage(s, false, 0)
		if m == nil {
			continue
		}
		if s.Tool == state.ToolEraser {
			Erase(dst, m)
			continue
		}
		c, ok := pal.Color(s.ColorSlot)
		if !ok {
			logging.Logger().Debug("stroke color slot out of range", "id", s.ID, "slot", s.ColorSlot)
			continue
		}
		Paint(dst, m, c, s.BlendMode)
	}
}

// coverage rasterizes the stroke outline (or its closed fill) with gg and
// returns the antialiased coverage over the stroke's bounding box, grown by
// pad pixels. The scratch pixmap is left clear.
func (e *Engine) coverage(s state.Stroke, fill bool, pad float64) *image.Alpha {
	bounds := e.bounds(s, fill, pad)
	if bounds.Empty() {
		return nil
	}

	dc := e.dc
	dc.SetRGBA(1, 1, 1, 1)
	x, y := e.vp.ToBuffer(s.Points[0])
	dc.MoveTo(x, y)
	for _, p := range s.Points[1:] {
		x, y = e.vp.ToBuffer(p)
		dc.LineTo(x, y)
	}
	var err error
	if fill {
		dc.ClosePath()
		err = dc.Fill()
	} else {
		dc.SetLineWidth(s.Size)
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineJoin(gg.LineJoinRound)
		err = dc.Stroke()
	}
	if err != nil {
		logging.Logger().Warn("stroke rasterization failed", "id", s.ID, "err", err)
		return nil
	}

	mask := image.NewAlpha(bounds)
	data, stride := e.pm.Data(), e.pm.Width()*4
	for py := bounds.Min.Y; py < bounds.Max.Y; py++ {
		row := data[py*stride:]
		for px := bounds.Min.X; px < bounds.Max.X; px++ {
			i := px*4 + 3
			if a := row[i]; a != 0 {
				mask.Pix[mask.PixOffset(px, py)] = a
				clear(row[px*4 : px*4+4])
			}
		}
	}
	return mask
}

// bounds is the pixel box the stroke can touch, clipped to the buffer.
func (e *Engine) bounds(s state.Stroke, fill bool, pad float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range s.Points {
		x, y := e.vp.ToBuffer(p)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	grow := pad + 2
	if !fill {
		grow += s.Size / 2
	}
	r := image.Rect(
		int(math.Floor(minX-grow)), int(math.Floor(minY-grow)),
		int(math.Ceil(maxX+grow)), int(math.Ceil(maxY+grow)),
	)
	return r.Intersect(image.Rect(0, 0, e.pm.Width(), e.pm.Height()))
}
