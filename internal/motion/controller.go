package motion

import (
	"context"
	"time"

	"ParallaxSketch/internal/logging"
)

const settleEpsilon = 1e-4

type script struct {
	path   Trajectory
	period time.Duration
	start  time.Time
}

// Controller owns the parallax offset. Inputs only set fields; Step does all
// the integration, once per frame, on the frame goroutine.
type Controller struct {
	spring   Spring
	lowPower bool
	playing  bool

	tilt       TiltSource
	tiltActive bool

	pointer Offset
	script  *script
}

// NewController creates an idle controller. A nil tilt source means NoTilt.
func NewController(cfg SpringConfig, tilt TiltSource) *Controller {
	if tilt == nil {
		tilt = NoTilt{}
	}
	return &Controller{spring: Spring{Config: cfg}, tilt: tilt}
}

func (c *Controller) SetSpring(cfg SpringConfig) { c.spring.Config = cfg }
func (c *Controller) Spring() SpringConfig       { return c.spring.Config }

// SetLowPower switches between spring integration and plain smoothing.
func (c *Controller) SetLowPower(on bool) { c.lowPower = on }
func (c *Controller) LowPower() bool      { return c.lowPower }

// SetPlaying toggles playback. Leaving playback only stops sourcing new
// targets; the view then relaxes toward center.
func (c *Controller) SetPlaying(on bool) { c.playing = on }
func (c *Controller) Playing() bool      { return c.playing }

// SetPointer records the pointer position, already mapped to [-1,1].
func (c *Controller) SetPointer(o Offset) { c.pointer = o }

// PointerOffset maps a viewport pixel position to [-1,1] on both axes.
func PointerOffset(x, y float64, width, height int) Offset {
	if width <= 0 || height <= 0 {
		return Offset{}
	}
	return Offset{x/float64(width)*2 - 1, y/float64(height)*2 - 1}
}

// EnableTilt asks the source for permission. Denial leaves the controller
// in pointer mode.
func (c *Controller) EnableTilt(ctx context.Context) bool {
	c.tiltActive = c.tilt.RequestPermission(ctx)
	if !c.tiltActive {
		logging.Logger().Warn("tilt permission denied; using pointer input")
	}
	return c.tiltActive
}

func (c *Controller) DisableTilt()     { c.tiltActive = false }
func (c *Controller) TiltActive() bool { return c.tiltActive }

// StartScript drives the offset from path, looping every period from now.
func (c *Controller) StartScript(path Trajectory, period time.Duration, now time.Time) {
	c.script = &script{path: path, period: period, start: now}
	c.spring.Snap(path.Sample(0, period))
}

// StopScript returns to interactive input from the current position.
func (c *Controller) StopScript() { c.script = nil }

func (c *Controller) Scripted() bool { return c.script != nil }

// Step advances one frame and returns the new current offset.
func (c *Controller) Step(now time.Time) Offset {
	if s := c.script; s != nil {
		c.spring.Snap(s.path.Sample(now.Sub(s.start), s.period))
		return c.spring.Current
	}
	switch {
	case !c.playing:
		c.spring.Target = Offset{}
	case c.tiltActive:
		if r, ok := c.tilt.Read(); ok {
			c.spring.Target = MapTilt(r)
		}
	default:
		c.spring.Target = c.pointer
	}
	if c.lowPower {
		c.spring.Smooth(SmoothingFactor)
	} else {
		c.spring.Step()
	}
	return c.spring.Current
}

// Current is the offset produced by the last Step.
func (c *Controller) Current() Offset { return c.spring.Current }

// Target is the offset the controller is moving toward.
func (c *Controller) Target() Offset { return c.spring.Target }

// Settled reports whether further frames would not move the offset. A
// scripted controller never settles.
func (c *Controller) Settled() bool {
	return c.script == nil && c.spring.Settled(settleEpsilon)
}

// Polling reports whether the target comes from the tilt source. Tilt
// readings arrive without any event reaching the frame loop, so a polling
// controller needs frames even once the offset has settled.
func (c *Controller) Polling() bool {
	return c.script == nil && c.playing && c.tiltActive
}
