package state

import "math"

// Overscan is the margin, in pixels, added on every side of a layer buffer so
// that parallax displacement never exposes a buffer edge inside the viewport.
const Overscan = 150

// Viewport is the visible drawing area in pixels.
type Viewport struct {
	Width, Height int
}

// Valid reports whether the viewport has a drawable area.
func (v Viewport) Valid() bool { return v.Width > 0 && v.Height > 0 }

// BufferSize returns the dimensions of a layer buffer for this viewport.
func (v Viewport) BufferSize() (w, h int) {
	return v.Width + 2*Overscan, v.Height + 2*Overscan
}

// ToBuffer converts a normalized point to layer-buffer pixel coordinates.
func (v Viewport) ToBuffer(p Point) (x, y float64) {
	return p.X*float64(v.Width) + Overscan, p.Y*float64(v.Height) + Overscan
}

// FromBuffer converts layer-buffer pixel coordinates to a normalized point.
func (v Viewport) FromBuffer(x, y float64) Point {
	return v.Normalize(x-Overscan, y-Overscan)
}

// Normalize converts viewport pixel coordinates to a normalized point.
func (v Viewport) Normalize(x, y float64) Point {
	if !v.Valid() {
		return Point{}
	}
	return Point{X: x / float64(v.Width), Y: y / float64(v.Height)}
}

// ToViewport converts a normalized point to viewport pixel coordinates.
func (v Viewport) ToViewport(p Point) (x, y float64) {
	return p.X * float64(v.Width), p.Y * float64(v.Height)
}

// Snap quantizes a pixel coordinate to the nearest grid line.
func Snap(value, grid float64) float64 {
	if grid <= 0 {
		return value
	}
	return math.Round(value/grid) * grid
}
