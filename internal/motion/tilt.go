package motion

import (
	"context"
	"math"
)

// TiltReading is one device orientation sample in degrees. ScreenAngle is
// the current screen rotation (0, 90, 180 or 270/-90).
type TiltReading struct {
	Beta        float64
	Gamma       float64
	ScreenAngle int
}

// TiltSource is a permission-gated orientation sensor. Read returning false
// is a normal state: no sensor, no permission, or no sample yet.
type TiltSource interface {
	RequestPermission(ctx context.Context) bool
	Read() (TiltReading, bool)
}

// NoTilt is the source for platforms without a sensor.
type NoTilt struct{}

func (NoTilt) RequestPermission(context.Context) bool { return false }
func (NoTilt) Read() (TiltReading, bool)              { return TiltReading{}, false }

// tiltRange is the rotation, in degrees, that maps to full deflection.
const tiltRange = 45

// MapTilt converts a reading to an offset: gamma drives x and beta drives y,
// each scaled by 1/45 and clamped to [-1,1], then rotated to match the
// screen orientation.
func MapTilt(r TiltReading) Offset {
	x := clamp1(r.Gamma / tiltRange)
	y := clamp1(r.Beta / tiltRange)
	switch ((r.ScreenAngle % 360) + 360) % 360 {
	case 90:
		return Offset{y, -x}
	case 180:
		return Offset{-x, -y}
	case 270:
		return Offset{-y, x}
	default:
		return Offset{x, y}
	}
}

func clamp1(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
