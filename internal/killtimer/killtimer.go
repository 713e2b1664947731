// Package killtimer implements the per-running-action renewable deadline
// described in spec.md §4.5: a single shared timer service schedules a
// one-shot wakeup at the current deadline; if a progress event has pushed
// the deadline forward in the meantime, the wakeup reschedules itself
// instead of firing, rather than cancelling and re-arming on every renewal.
package killtimer

import (
	"sync/atomic"
	"time"
)

// Timer is a renewable deadline for a single in-flight action. The zero
// value is not usable; construct with New.
type Timer struct {
	deadline atomic.Int64 // UnixNano
	onExpire func()
	timer    *time.Timer
	stopped  atomic.Bool
}

// New arms a Timer that calls onExpire the first time the deadline is
// reached without having been pushed back in the meantime. onExpire is
// expected to attempt a single-writer-wins transition (e.g. a CAS on a
// shared result slot) and destroy the child only if it wins that race.
func New(deadline time.Time, onExpire func()) *Timer {
	t := &Timer{onExpire: onExpire}
	t.deadline.Store(deadline.UnixNano())
	t.schedule(deadline)
	return t
}

func (t *Timer) schedule(at time.Time) {
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	t.timer = time.AfterFunc(delay, t.fire)
}

func (t *Timer) fire() {
	if t.stopped.Load() {
		return
	}

	now := time.Now()
	currentDeadline := time.Unix(0, t.deadline.Load())
	if now.Before(currentDeadline) {
		t.schedule(currentDeadline)
		return
	}

	t.onExpire()
}

// Renew pushes the deadline forward to now+d. Per spec.md §4.4 step 7, this
// is how a progress event on a suite action keeps one slow test method from
// getting the whole suite killed.
func (t *Timer) Renew(d time.Duration) {
	t.deadline.Store(time.Now().Add(d).UnixNano())
}

// Stop prevents any future firing. Safe to call after the timer has
// already fired or been stopped.
func (t *Timer) Stop() {
	t.stopped.Store(true)
	if t.timer != nil {
		t.timer.Stop()
	}
}
