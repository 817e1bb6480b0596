package motion

import (
	"context"
	"sync/atomic"
	"time"
)

// FrameFunc renders one frame at now and reports whether another frame is
// needed even without new input.
type FrameFunc func(now time.Time) bool

// Dispatcher runs fn on the thread that owns the scene. The desktop shell
// passes fyne.Do; tests run fn inline.
type Dispatcher func(fn func())

// Inline runs fn immediately.
func Inline(fn func()) { fn() }

// Loop connects a scheduler to the frame function.
type Loop struct {
	sched    Scheduler
	clock    Clock
	dispatch Dispatcher
	frame    FrameFunc
	pending  atomic.Bool
}

func NewLoop(sched Scheduler, clock Clock, dispatch Dispatcher, frame FrameFunc) *Loop {
	if clock == nil {
		clock = SystemClock{}
	}
	if dispatch == nil {
		dispatch = Inline
	}
	return &Loop{sched: sched, clock: clock, dispatch: dispatch, frame: frame}
}

// Run blocks until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	l.sched.Run(ctx, l.Tick)
}

// Tick runs one frame through the dispatcher. A tick is dropped while the
// previously dispatched frame has not started yet.
func (l *Loop) Tick() {
	if !l.pending.CompareAndSwap(false, true) {
		return
	}
	l.dispatch(func() {
		l.pending.Store(false)
		if l.frame(l.clock.Now()) {
			l.sched.Invalidate()
		}
	})
}

// Invalidate asks for a frame; a no-op under a continuous scheduler.
func (l *Loop) Invalidate() { l.sched.Invalidate() }

// Scheduler returns the loop's scheduler.
func (l *Loop) Scheduler() Scheduler { return l.sched }
