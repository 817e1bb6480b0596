// Package composite places each layer buffer into the visible frame with its
// parallax displacement, opacity, depth-of-field blur and blend mode.
package composite

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"ParallaxSketch/internal/motion"
	"ParallaxSketch/internal/raster"
	"ParallaxSketch/internal/state"
)

const (
	// depthStep scales the layer index distance from the focal layer.
	depthStep = 0.5
	// onionFalloff is the opacity lost per layer of distance from the
	// active layer; onionFloor keeps far layers faintly visible.
	onionFalloff = 0.25
	onionFloor   = 0.1
	// InactiveOpacity is the flat dim for inactive layers without onion skin.
	InactiveOpacity = 0.3
)

// Params is the scene configuration the compositor reads every frame.
type Params struct {
	Layers      int
	FocalLayer  int
	ActiveLayer int

	Strength float64 // parallax strength, 0-100
	Inverted bool

	Playing   bool
	Exporting bool
	OnionSkin bool

	BlurStrength float64
	FocusRange   float64 // negative disables depth blur
	BlurOverride map[int]float64

	GlobalBlend state.BlendMode
	LayerBlend  []state.BlendMode

	Background color.NRGBA
}

// Displacement returns the pixel shift of layer i for offset o. The focal
// layer never moves.
func (p *Params) Displacement(i int, o motion.Offset) (dx, dy float64) {
	maxPx := p.Strength / 100 * state.Overscan
	depth := float64(i-p.FocalLayer) * depthStep
	dir := 1.0
	if p.Inverted {
		dir = -1
	}
	k := maxPx * depth * dir
	if k == 0 {
		return 0, 0
	}
	return -o.X * k, -o.Y * k
}

// Opacity returns layer i's opacity.
func (p *Params) Opacity(i int) float64 {
	switch {
	case p.Playing || p.Exporting || i == p.ActiveLayer:
		return 1
	case p.OnionSkin:
		dist := math.Abs(float64(i - p.ActiveLayer))
		return math.Max(onionFloor, 1-dist*onionFalloff)
	default:
		return InactiveOpacity
	}
}

// Blur returns layer i's blur radius in pixels.
func (p *Params) Blur(i int) float64 {
	if v, ok := p.BlurOverride[i]; ok {
		return math.Max(0, v)
	}
	if p.FocusRange < 0 {
		return 0
	}
	dist := math.Abs(float64(i - p.FocalLayer))
	return math.Max(0, dist-p.FocusRange) * p.BlurStrength
}

// Blend returns layer i's blend mode: its own if set, else the global one.
func (p *Params) Blend(i int) state.BlendMode {
	if i >= 0 && i < len(p.LayerBlend) && p.LayerBlend[i] != state.BlendNormal {
		return p.LayerBlend[i]
	}
	return p.GlobalBlend
}

// Correct removes layer's current displacement from a viewport pixel
// position so a stroke lands where the user sees it.
func (p *Params) Correct(x, y float64, layer int, o motion.Offset) (float64, float64) {
	dx, dy := p.Displacement(layer, o)
	return x - dx, y - dy
}

// LayerSource provides the rendered layer buffers.
type LayerSource interface {
	Layer(i int) *raster.Layer
}

type blurred struct {
	gen   uint64
	sigma float64
	img   *image.NRGBA
}

// Compositor renders frames. Blurred layers are cached until the layer is
// redrawn or its radius changes.
type Compositor struct {
	Params

	cache   map[int]blurred
	scratch *image.RGBA
}

func New(p Params) *Compositor {
	return &Compositor{Params: p, cache: make(map[int]blurred)}
}

// Render fills dst with the background and draws every layer in ascending
// order at offset o. dst is sized to the viewport, without overscan.
func (c *Compositor) Render(dst *image.NRGBA, src LayerSource, o motion.Offset) {
	bg := c.Background
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
	if c.scratch == nil || c.scratch.Rect != dst.Rect {
		c.scratch = image.NewRGBA(dst.Rect)
	}
	for i := 0; i < c.Layers; i++ {
		l := src.Layer(i)
		if l == nil {
			continue
		}
		op := c.Opacity(i)
		if op <= 0 {
			continue
		}
		img := c.blurred(i, l)
		dx, dy := c.Displacement(i, o)
		c.place(img, dx-state.Overscan, dy-state.Overscan)
		raster.Composite(dst, c.scratch, op, c.Blend(i))
	}
}

func (c *Compositor) blurred(i int, l *raster.Layer) *image.NRGBA {
	sigma := c.Blur(i)
	if sigma <= 0 {
		return l.Image
	}
	if b, ok := c.cache[i]; ok && b.gen == l.Generation && b.sigma == sigma {
		return b.img
	}
	img := raster.Blur(l.Image, sigma)
	c.cache[i] = blurred{gen: l.Generation, sigma: sigma, img: img}
	return img
}

// place draws img into the cleared scratch buffer with its origin at (x, y).
// Whole-pixel offsets copy directly; fractional ones resample bilinearly.
func (c *Compositor) place(img *image.NRGBA, x, y float64) {
	clear(c.scratch.Pix)
	if x == math.Trunc(x) && y == math.Trunc(y) {
		dp := c.scratch.Rect.Min.Add(image.Pt(int(x), int(y)))
		draw.Copy(c.scratch, dp, img, img.Rect, draw.Src, nil)
		return
	}
	m := f64.Aff3{1, 0, float64(c.scratch.Rect.Min.X) + x, 0, 1, float64(c.scratch.Rect.Min.Y) + y}
	draw.BiLinear.Transform(c.scratch, m, img, img.Rect, draw.Src, nil)
}
