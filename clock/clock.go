// Package clock is the only source of deferred work for interactive
// subsystems. Callbacks always run one at a time, so subsystems need no
// locking of their own.
package clock

import (
	"time"
)

// FrameInterval is the spacing of animation frames.
const FrameInterval = 16 * time.Millisecond

// Timer is a handle of scheduled callback. Stop prevents callback from
// running even when it is already due, it reports whether callback was still
// pending.
type Timer interface {
	Stop() bool
}

// Scheduler runs deferred callbacks.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	// NextFrame runs f on the next animation frame.
	NextFrame(f func()) Timer
}

// Stop stops timer if any and returns nil, so the handle field can be
// cleared in the same statement.
func Stop(t Timer) Timer {
	if t != nil {
		t.Stop()
	}
	return nil
}
