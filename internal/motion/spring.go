// Package motion turns pointer, tilt and scripted inputs into the per-frame
// parallax offset.
package motion

import "math"

// Offset is a normalized 2D displacement, nominally in [-1,1] per axis.
type Offset struct{ X, Y float64 }

// Sub returns o - p.
func (o Offset) Sub(p Offset) Offset { return Offset{o.X - p.X, o.Y - p.Y} }

// Len returns the Euclidean length of o.
func (o Offset) Len() float64 { return math.Hypot(o.X, o.Y) }

// SpringConfig holds the shared 2D spring parameters. Stiffness is in (0,1],
// damping in (0,1).
type SpringConfig struct {
	Stiffness float64
	Damping   float64
}

// DefaultSpring is a soft, slightly underdamped follow.
var DefaultSpring = SpringConfig{Stiffness: 0.05, Damping: 0.92}

// SmoothingFactor is the per-frame interpolation used in low-power mode.
const SmoothingFactor = 0.15

// Spring integrates the current offset toward a target.
type Spring struct {
	Config   SpringConfig
	Current  Offset
	Target   Offset
	Velocity Offset
}

// Step advances one frame:
// force = (target-current)*k; v = (v+force)*damping; current += v.
func (s *Spring) Step() {
	k, d := s.Config.Stiffness, s.Config.Damping
	s.Velocity.X = (s.Velocity.X + (s.Target.X-s.Current.X)*k) * d
	s.Velocity.Y = (s.Velocity.Y + (s.Target.Y-s.Current.Y)*k) * d
	s.Current.X += s.Velocity.X
	s.Current.Y += s.Velocity.Y
}

// Smooth moves current a fixed fraction toward target and drops velocity.
func (s *Spring) Smooth(factor float64) {
	s.Velocity = Offset{}
	s.Current.X += (s.Target.X - s.Current.X) * factor
	s.Current.Y += (s.Target.Y - s.Current.Y) * factor
}

// Snap pins both current and target to o with zero velocity.
func (s *Spring) Snap(o Offset) {
	s.Current, s.Target, s.Velocity = o, o, Offset{}
}

// Settled reports whether current has converged on target within eps.
func (s *Spring) Settled(eps float64) bool {
	return s.Target.Sub(s.Current).Len() < eps && s.Velocity.Len() < eps
}
