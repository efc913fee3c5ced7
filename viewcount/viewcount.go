// Package viewcount reports post views to a remote counter. Delivery is
// best effort: failures are retried a few times and then only logged.
package viewcount

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tripdoc/clock"
	"tripdoc/config"
)

// Event is a single view of a post.
type Event struct {
	ID     uuid.UUID `json:"id"`
	PostID string    `json:"post_id"`
	At     time.Time `json:"at"`
}

// Sender delivers view events.
type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// Reporter schedules delivery attempts on a scheduler.
type Reporter struct {
	log      *zap.Logger
	sender   Sender
	sched    clock.Scheduler
	attempts int
	spacing  time.Duration
	pending  map[uuid.UUID]retry
	onResult func(Event, error)
}

type retry struct {
	ev    Event
	timer clock.Timer
}

func NewReporter(cfg config.ViewCountConfig, sender Sender, sched clock.Scheduler, log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{
		log:      log.Named("viewcount"),
		sender:   sender,
		sched:    sched,
		attempts: max(cfg.Attempts, 1),
		spacing:  cfg.Spacing,
		pending:  make(map[uuid.UUID]retry),
	}
}

// OnResult registers callback invoked once per event when delivery
// succeeds, is abandoned, is stopped or runs out of attempts.
func (r *Reporter) OnResult(f func(Event, error)) {
	r.onResult = f
}

// Report sends view event for post. First attempt is made immediately,
// failed attempts are repeated with fixed spacing. Returns event id.
func (r *Reporter) Report(ctx context.Context, postID string) uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	ev := Event{ID: id, PostID: postID, At: r.sched.Now()}
	r.attempt(ctx, ev, 1)
	return id
}

func (r *Reporter) attempt(ctx context.Context, ev Event, n int) {
	delete(r.pending, ev.ID)
	if ctx.Err() != nil {
		r.log.Debug("View event abandoned", zap.Stringer("id", ev.ID), zap.Error(ctx.Err()))
		r.done(ev, ctx.Err())
		return
	}
	err := r.sender.Send(ctx, ev)
	if err == nil {
		r.log.Debug("View event delivered", zap.Stringer("id", ev.ID), zap.String("post", ev.PostID), zap.Int("attempt", n))
		r.done(ev, nil)
		return
	}
	if n >= r.attempts {
		r.log.Warn("Unable to deliver view event", zap.Stringer("id", ev.ID), zap.String("post", ev.PostID),
			zap.Int("attempts", n), zap.Error(err))
		r.done(ev, err)
		return
	}
	r.log.Debug("View event attempt failed", zap.Stringer("id", ev.ID), zap.Int("attempt", n), zap.Error(err))
	r.pending[ev.ID] = retry{ev: ev, timer: r.sched.AfterFunc(r.spacing, func() { r.attempt(ctx, ev, n+1) })}
}

func (r *Reporter) done(ev Event, err error) {
	if r.onResult != nil {
		r.onResult(ev, err)
	}
}

// Pending returns number of events waiting for retry.
func (r *Reporter) Pending() int {
	return len(r.pending)
}

// Stop cancels all scheduled retries. Result callback gets
// context.Canceled for every cancelled event.
func (r *Reporter) Stop() {
	for id, p := range r.pending {
		p.timer.Stop()
		delete(r.pending, id)
		r.log.Debug("View event abandoned", zap.Stringer("id", id), zap.String("post", p.ev.PostID))
		r.done(p.ev, context.Canceled)
	}
}
