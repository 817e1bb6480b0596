package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlurSpreadsWithoutDarkening(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 21, 21))
	src.SetNRGBA(10, 10, color.NRGBA{200, 100, 50, 255})

	out := Blur(src, 2)
	center := out.NRGBAAt(10, 10)
	near := out.NRGBAAt(12, 10)
	assert.Less(t, center.A, uint8(255))
	assert.Greater(t, near.A, uint8(0))
	assert.InDelta(t, 200, int(near.R), 2, "premultiplied blur keeps hue")
	assert.InDelta(t, 100, int(near.G), 2)
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)

	assert.Same(t, src, Blur(src, 0))
}

func TestBlurKeepsOrigin(t *testing.T) {
	src := image.NewNRGBA(image.Rect(-4, -4, 12, 12))
	src.SetNRGBA(4, 4, color.NRGBA{0, 0, 255, 255})
	out := Blur(src, 1.5)
	require.Equal(t, src.Rect, out.Rect)
	assert.Greater(t, out.NRGBAAt(5, 4).A, uint8(0))
	assert.Equal(t, uint8(255), out.NRGBAAt(5, 4).B)
}

func TestBlurMask(t *testing.T) {
	m := image.NewAlpha(image.Rect(5, 5, 25, 25))
	m.SetAlpha(15, 15, color.Alpha{255})
	out := BlurMask(m, 3)
	assert.Equal(t, m.Rect, out.Rect)
	assert.Greater(t, out.AlphaAt(18, 15).A, uint8(0))
	assert.Less(t, out.AlphaAt(15, 15).A, uint8(255))
}
