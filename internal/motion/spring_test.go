package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpringLowStiffnessBarelyMoves(t *testing.T) {
	s := Spring{Config: SpringConfig{Stiffness: 1e-6, Damping: 0.9}, Target: Offset{1, -1}}
	for range 10 {
		s.Step()
		assert.Less(t, s.Current.Len(), 1e-4)
	}
}

func TestSpringZeroDampingStopsOnceTargetStops(t *testing.T) {
	s := Spring{Config: SpringConfig{Stiffness: 0.5, Damping: 0.9}}
	for i := range 30 {
		s.Target = Offset{float64(i) / 30, 0}
		s.Step()
	}
	s.Config.Damping = 1e-9
	for range 3 {
		s.Step()
	}
	assert.InDelta(t, 0, s.Velocity.X, 1e-6)
	assert.InDelta(t, 0, s.Velocity.Y, 1e-6)
}

func TestSpringConverges(t *testing.T) {
	s := Spring{Config: DefaultSpring, Target: Offset{0.5, 0.25}}
	for range 2000 {
		s.Step()
	}
	assert.True(t, s.Settled(1e-4))
	assert.InDelta(t, 0.5, s.Current.X, 1e-4)
}

func TestSmoothHasNoVelocity(t *testing.T) {
	s := Spring{Velocity: Offset{3, 3}, Target: Offset{1, 0}}
	s.Smooth(0.5)
	assert.Equal(t, Offset{0.5, 0}, s.Current)
	assert.Equal(t, Offset{}, s.Velocity)
	s.Smooth(0.5)
	assert.Equal(t, Offset{0.75, 0}, s.Current)
}
