package motion

import (
	"context"
	"time"
)

// FrameInterval is the nominal frame period (60 Hz).
const FrameInterval = time.Second / 60

// Scheduler decides when the next frame runs. Run blocks until ctx is done,
// calling frame from a single goroutine; frame never runs concurrently with
// itself.
type Scheduler interface {
	Run(ctx context.Context, frame func())
	// Invalidate requests a frame. Continuous schedulers ignore it.
	Invalidate()
}

// ContinuousScheduler runs a frame on every tick.
type ContinuousScheduler struct {
	Interval time.Duration
}

// NewContinuousScheduler ticks at interval, or FrameInterval when zero.
func NewContinuousScheduler(interval time.Duration) *ContinuousScheduler {
	if interval <= 0 {
		interval = FrameInterval
	}
	return &ContinuousScheduler{Interval: interval}
}

func (s *ContinuousScheduler) Run(ctx context.Context, frame func()) {
	t := time.NewTicker(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			frame()
		}
	}
}

func (s *ContinuousScheduler) Invalidate() {}

// OnDemandScheduler runs a frame only after Invalidate, at most once per
// interval. Multiple invalidations between frames coalesce.
type OnDemandScheduler struct {
	Interval time.Duration
	dirty    chan struct{}
}

// NewOnDemandScheduler creates a scheduler throttled to interval.
func NewOnDemandScheduler(interval time.Duration) *OnDemandScheduler {
	if interval <= 0 {
		interval = FrameInterval
	}
	return &OnDemandScheduler{Interval: interval, dirty: make(chan struct{}, 1)}
}

func (s *OnDemandScheduler) Run(ctx context.Context, frame func()) {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.dirty:
		}
		if wait := s.Interval - time.Since(last); wait > 0 && !last.IsZero() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
		last = time.Now()
		frame()
	}
}

func (s *OnDemandScheduler) Invalidate() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// NewScheduler picks the scheduler for the power mode.
func NewScheduler(lowPower bool, interval time.Duration) Scheduler {
	if lowPower {
		return NewOnDemandScheduler(interval)
	}
	return NewContinuousScheduler(interval)
}
