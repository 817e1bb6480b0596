package motion

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrajectoriesArePeriodic(t *testing.T) {
	period := 4 * time.Second
	for _, tr := range []Trajectory{TrajectoryCircle, TrajectoryFigure8, TrajectorySwayH, TrajectorySwayV} {
		for _, e := range []time.Duration{0, 130 * time.Millisecond, 1500 * time.Millisecond, 3999 * time.Millisecond, 11 * time.Second} {
			a := tr.Sample(e, period)
			b := tr.Sample(e+period, period)
			assert.InDelta(t, a.X, b.X, 1e-9, "%v at %v", tr, e)
			assert.InDelta(t, a.Y, b.Y, 1e-9, "%v at %v", tr, e)
		}
	}
}

func TestTrajectoryShapes(t *testing.T) {
	period := time.Second
	quarter := period / 4

	assert.InDelta(t, 1, TrajectoryCircle.Sample(0, period).X, 1e-9)
	assert.InDelta(t, 1, TrajectoryCircle.Sample(quarter, period).Y, 1e-9)

	h := TrajectorySwayH.Sample(quarter, period)
	assert.InDelta(t, 1, h.X, 1e-9)
	assert.Zero(t, h.Y)

	v := TrajectorySwayV.Sample(quarter, period)
	assert.Zero(t, v.X)
	assert.InDelta(t, 1, v.Y, 1e-9)

	f := TrajectoryFigure8.Sample(quarter, period)
	assert.InDelta(t, 0, f.X, 1e-9, "lemniscate crosses the origin")
	assert.InDelta(t, 0, f.Y, 1e-9)
	f = TrajectoryFigure8.Sample(period/8, period)
	assert.Greater(t, f.X, 0.0)
	assert.Greater(t, f.Y, 0.0)
}

func TestPhase(t *testing.T) {
	assert.InDelta(t, math.Pi, Phase(500*time.Millisecond, time.Second), 1e-12)
	assert.InDelta(t, math.Pi, Phase(-500*time.Millisecond, time.Second), 1e-12)
	assert.Zero(t, Phase(time.Second, 0))
}

func TestParseTrajectory(t *testing.T) {
	tr, ok := ParseTrajectory("sway_v")
	assert.True(t, ok)
	assert.Equal(t, TrajectorySwayV, tr)
	tr, ok = ParseTrajectory("spiral")
	assert.False(t, ok)
	assert.Equal(t, TrajectoryCircle, tr)
	assert.Equal(t, "FIGURE8", TrajectoryFigure8.String())
}
