package session

import (
	"sync"
	"time"
)

// TickFunc receives the time remaining on each clock tick. Values are
// monotonically non-increasing and floor-clamped at zero.
type TickFunc func(remaining time.Duration)

// ExpireFunc is invoked at most once, when the countdown elapses without
// being cancelled.
type ExpireFunc func()

// Clock is a cancellable countdown for one turn. Callbacks run on the
// clock's own goroutine; a callback may still be in flight when Cancel
// returns, so callers that need a hard cutoff must discard stale callbacks
// themselves (the session does this with a generation counter).
type Clock struct {
	stop chan struct{}
	once sync.Once
}

// StartClock begins a countdown of the given duration, reporting remaining
// time at the tick cadence and firing onExpire when the deadline passes.
func StartClock(duration, tick time.Duration, onTick TickFunc, onExpire ExpireFunc) *Clock {
	c := &Clock{stop: make(chan struct{})}
	go c.run(duration, tick, onTick, onExpire)
	return c
}

func (c *Clock) run(duration, tick time.Duration, onTick TickFunc, onExpire ExpireFunc) {
	deadline := time.Now().Add(duration)
	expire := time.NewTimer(duration)
	defer expire.Stop()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-expire.C:
			// Cancellation wins over an already-queued expiry.
			select {
			case <-c.stop:
				return
			default:
			}
			if onExpire != nil {
				onExpire()
			}
			return
		case <-ticker.C:
			select {
			case <-c.stop:
				return
			default:
			}
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			if onTick != nil {
				onTick(remaining)
			}
		}
	}
}

// Cancel stops the countdown and suppresses a pending expiry. It is
// idempotent; cancelling an already-stopped clock is a no-op.
func (c *Clock) Cancel() {
	c.once.Do(func() {
		close(c.stop)
	})
}
