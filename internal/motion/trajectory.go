package motion

import (
	"math"
	"strings"
	"time"
)

// Trajectory is a closed-form periodic camera path used for export.
type Trajectory uint8

const (
	TrajectoryCircle Trajectory = iota
	TrajectoryFigure8
	TrajectorySwayH
	TrajectorySwayV
)

var trajectoryNames = [...]string{"CIRCLE", "FIGURE8", "SWAY_H", "SWAY_V"}

func (t Trajectory) String() string {
	if int(t) < len(trajectoryNames) {
		return trajectoryNames[t]
	}
	return "CIRCLE"
}

// ParseTrajectory accepts the names above case-insensitively.
func ParseTrajectory(s string) (Trajectory, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range trajectoryNames {
		if name == s {
			return Trajectory(i), true
		}
	}
	return TrajectoryCircle, false
}

// Phase maps elapsed time onto [0, 2π) for a loop of length period.
func Phase(elapsed, period time.Duration) float64 {
	if period <= 0 {
		return 0
	}
	e := elapsed % period
	if e < 0 {
		e += period
	}
	return 2 * math.Pi * float64(e) / float64(period)
}

// Sample returns the trajectory position at elapsed time within a loop of
// length period.
func (t Trajectory) Sample(elapsed, period time.Duration) Offset {
	p := Phase(elapsed, period)
	switch t {
	case TrajectoryFigure8:
		// Lemniscate of Bernoulli.
		d := 1 + math.Sin(p)*math.Sin(p)
		return Offset{math.Cos(p) / d, math.Sin(p) * math.Cos(p) / d}
	case TrajectorySwayH:
		return Offset{math.Sin(p), 0}
	case TrajectorySwayV:
		return Offset{0, math.Sin(p)}
	default:
		return Offset{math.Cos(p), math.Sin(p)}
	}
}
