package engine

import (
	"sort"
	"time"
)

// Scheduler defers an action until the presentation layer has finished
// animating a move. Implementations decide when the action actually runs.
type Scheduler interface {
	Schedule(delay time.Duration, action func())
}

// ImmediateScheduler runs every action synchronously, ignoring the delay.
// Headless callers (the game server, tests) use it so a move is complete
// when Move returns.
type ImmediateScheduler struct{}

// Schedule runs action right away
func (ImmediateScheduler) Schedule(_ time.Duration, action func()) {
	action()
}

type pendingAction struct {
	due    time.Time
	seq    int
	action func()
}

// QueueScheduler holds actions until a driving loop advances its clock.
// It is not safe for concurrent use; the loop that calls Advance must be the
// same one that issues moves.
type QueueScheduler struct {
	now     func() time.Time
	pending []pendingAction
	seq     int
}

// NewQueueScheduler creates a queue that stamps due times with now
func NewQueueScheduler(now func() time.Time) *QueueScheduler {
	if now == nil {
		now = time.Now
	}
	return &QueueScheduler{now: now}
}

// Schedule queues action to run once delay has elapsed
func (q *QueueScheduler) Schedule(delay time.Duration, action func()) {
	q.seq++
	q.pending = append(q.pending, pendingAction{
		due:    q.now().Add(delay),
		seq:    q.seq,
		action: action,
	})
}

// Advance runs every action due at or before now, oldest first, and returns
// how many ran. Actions scheduled while advancing wait for the next call.
func (q *QueueScheduler) Advance(now time.Time) int {
	if len(q.pending) == 0 {
		return 0
	}

	sort.SliceStable(q.pending, func(i, j int) bool {
		if q.pending[i].due.Equal(q.pending[j].due) {
			return q.pending[i].seq < q.pending[j].seq
		}
		return q.pending[i].due.Before(q.pending[j].due)
	})

	var due, rest []pendingAction
	for _, p := range q.pending {
		if !p.due.After(now) {
			due = append(due, p)
		} else {
			rest = append(rest, p)
		}
	}
	q.pending = rest

	for _, p := range due {
		p.action()
	}
	return len(due)
}

// Flush runs every pending action regardless of its due time
func (q *QueueScheduler) Flush() int {
	ran := 0
	for len(q.pending) > 0 {
		latest := q.pending[0].due
		for _, p := range q.pending {
			if p.due.After(latest) {
				latest = p.due
			}
		}
		ran += q.Advance(latest)
	}
	return ran
}

// Pending returns the number of queued actions
func (q *QueueScheduler) Pending() int {
	return len(q.pending)
}
