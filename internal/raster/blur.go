package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

// Blur returns a Gaussian-blurred copy of src with standard deviation sigma
// pixels. imaging weights color by alpha, so transparent regions do not
// darken edges. sigma <= 0 returns src unchanged.
func Blur(src *image.NRGBA, sigma float64) *image.NRGBA {
	if sigma <= 0 {
		return src
	}
	dst := imaging.Blur(src, sigma)
	dst.Rect = dst.Rect.Add(src.Rect.Min)
	return dst
}

// BlurMask returns a Gaussian-blurred copy of a coverage mask.
func BlurMask(src *image.Alpha, sigma float64) *image.Alpha {
	if sigma <= 0 {
		return src
	}
	tinted := image.NewNRGBA(src.Rect)
	for y := 0; y < src.Rect.Dy(); y++ {
		row := src.Pix[y*src.Stride:]
		out := tinted.Pix[y*tinted.Stride:]
		for x := 0; x < src.Rect.Dx(); x++ {
			out[x*4], out[x*4+1], out[x*4+2], out[x*4+3] = 0xff, 0xff, 0xff, row[x]
		}
	}
	blurred := imaging.Blur(tinted, sigma)

	dst := image.NewAlpha(src.Rect)
	for y := 0; y < src.Rect.Dy(); y++ {
		row := blurred.Pix[y*blurred.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := range out[:src.Rect.Dx()] {
			out[x] = row[x*4+3]
		}
	}
	return dst
}
