package clock

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Loop is a real time scheduler serializing timer callbacks and host events
// on the goroutine calling Run.
type Loop struct {
	log    *zap.Logger
	events chan func()
	done   chan struct{}
}

// NewLoop creates loop with room for queued events.
func NewLoop(queue int, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		log:    log.Named("loop"),
		events: make(chan func(), queue),
		done:   make(chan struct{}),
	}
}

// Run processes events until context is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-l.events:
			f()
		}
	}
}

// Do queues host event. Events posted after loop is finished are dropped.
func (l *Loop) Do(f func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- f:
		return true
	case <-l.done:
		l.log.Debug("Event dropped, loop is finished")
		return false
	}
}

type loopTimer struct {
	t       *time.Timer
	stopped atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	t.t.Stop()
	return true
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Do(func() {
			// stopped after firing but before reaching the loop
			if lt.stopped.Swap(true) {
				return
			}
			f()
		})
	})
	return lt
}

func (l *Loop) NextFrame(f func()) Timer {
	return l.AfterFunc(FrameInterval, f)
}
