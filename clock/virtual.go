package clock

import (
	"container/heap"
	"sync"
	"time"
)

// Virtual is a deterministic scheduler driven by explicit Advance calls. It
// is used by tests and by headless runs.
type Virtual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	queue timerQueue
}

// NewVirtual creates virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

type virtualTimer struct {
	v       *Virtual
	due     time.Time
	seq     uint64
	f       func()
	index   int
	stopped bool
}

func (t *virtualTimer) Stop() bool {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if t.stopped || t.index < 0 {
		return false
	}
	t.stopped = true
	heap.Remove(&t.v.queue, t.index)
	return true
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) AfterFunc(d time.Duration, f func()) Timer {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	t := &virtualTimer{v: v, due: v.now.Add(max(d, 0)), seq: v.seq, f: f}
	heap.Push(&v.queue, t)
	return t
}

func (v *Virtual) NextFrame(f func()) Timer {
	return v.AfterFunc(FrameInterval, f)
}

// Advance moves time forward by d running every callback that becomes due,
// in due order. Callbacks scheduled by callbacks run too if they fall inside
// the window.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()
	v.runUntil(target)
}

// AdvanceTo moves time to t, it never goes backwards.
func (v *Virtual) AdvanceTo(t time.Time) {
	v.runUntil(t)
}

// Flush runs callbacks until nothing is pending, advancing time as needed.
// Returns number of callbacks run. Callbacks rescheduling themselves forever
// are cut at limit.
func (v *Virtual) Flush(limit int) int {
	n := 0
	for n < limit {
		v.mu.Lock()
		if len(v.queue) == 0 {
			v.mu.Unlock()
			break
		}
		due := v.queue[0].due
		v.mu.Unlock()
		n += v.runUntil(due)
	}
	return n
}

// Pending returns number of scheduled callbacks.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.queue)
}

func (v *Virtual) runUntil(target time.Time) int {
	n := 0
	for {
		v.mu.Lock()
		if len(v.queue) == 0 || v.queue[0].due.After(target) {
			if target.After(v.now) {
				v.now = target
			}
			v.mu.Unlock()
			return n
		}
		t := heap.Pop(&v.queue).(*virtualTimer)
		if t.due.After(v.now) {
			v.now = t.due
		}
		v.mu.Unlock()

		t.f()
		n++
	}
}

type timerQueue []*virtualTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*virtualTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
