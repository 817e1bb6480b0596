package raster

import (
	"image"
	"image/color"
	"math"

	"ParallaxSketch/internal/state"
)

// channel applies the separable blend function for mode to one channel of
// backdrop b and source s, both in [0,1].
func channel(mode state.BlendMode, b, s float64) float64 {
	switch mode {
	case state.BlendMultiply:
		return b * s
	case state.BlendOverlay:
		if b < 0.5 {
			return 2 * b * s
		}
		return 1 - 2*(1-b)*(1-s)
	case state.BlendDifference:
		return math.Abs(b - s)
	default:
		return s
	}
}

// over composites a non-premultiplied source pixel with alpha sa onto the
// backdrop pixel at d[0:4] (NRGBA layout) using mode.
func over(d []uint8, sr, sg, sb, sa float64, mode state.BlendMode) {
	if sa <= 0 {
		return
	}
	ba := float64(d[3]) / 255
	oa := sa + ba*(1-sa)
	if oa <= 0 {
		return
	}
	src := [3]float64{sr, sg, sb}
	for i := range 3 {
		cb := float64(d[i]) / 255
		cs := (1-ba)*src[i] + ba*channel(mode, cb, src[i])
		d[i] = to8((sa*cs + ba*cb*(1-sa)) / oa)
	}
	d[3] = to8(oa)
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Paint composites c through the coverage mask onto dst with the given
// blend mode. Only the mask's bounds are touched.
func Paint(dst *image.NRGBA, mask *image.Alpha, c color.NRGBA, mode state.BlendMode) {
	r := mask.Rect.Intersect(dst.Rect)
	cr, cg, cb := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	ca := float64(c.A) / 255
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := mask.Pix[mask.PixOffset(x, y)]
			if m == 0 {
				continue
			}
			i := dst.PixOffset(x, y)
			over(dst.Pix[i:i+4], cr, cg, cb, ca*float64(m)/255, mode)
		}
	}
}

// Erase removes dst alpha in proportion to mask coverage (destination-out).
func Erase(dst *image.NRGBA, mask *image.Alpha) {
	r := mask.Rect.Intersect(dst.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := mask.Pix[mask.PixOffset(x, y)]
			if m == 0 {
				continue
			}
			i := dst.PixOffset(x, y) + 3
			dst.Pix[i] = uint8((int(dst.Pix[i])*(255-int(m)) + 127) / 255)
		}
	}
}

// Composite blends the premultiplied src onto dst pixel-for-pixel over their
// common bounds, scaling src alpha by opacity.
func Composite(dst *image.NRGBA, src *image.RGBA, opacity float64, mode state.BlendMode) {
	if opacity <= 0 {
		return
	}
	opacity = math.Min(opacity, 1)
	r := src.Rect.Intersect(dst.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s := src.Pix[src.PixOffset(x, y):]
			if s[3] == 0 {
				continue
			}
			a := float64(s[3]) / 255
			i := dst.PixOffset(x, y)
			over(dst.Pix[i:i+4], clamp01(float64(s[0])/255/a), clamp01(float64(s[1])/255/a),
				clamp01(float64(s[2])/255/a), a*opacity, mode)
		}
	}
}
