package room

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// task is a cancelable unit of deferred work. Cancel is immediate, idempotent,
// and safe to call from within the task's own callback.
type task struct {
	stop chan struct{}
	once sync.Once
}

// Cancel stops the task. A task that already fired, or was already canceled,
// is unaffected.
func (t *task) Cancel() {
	t.once.Do(func() {
		close(t.stop)
	})
}

// runAfter schedules fn to run once after d on its own goroutine.
// Cancellation between the timer firing and fn being scheduled cannot be
// fully excluded, so fn must guard itself against stale state.
func runAfter(clock clockwork.Clock, d time.Duration, fn func()) *task {
	t := &task{stop: make(chan struct{})}
	timer := clock.NewTimer(d)

	go func() {
		select {
		case <-timer.Chan():
			fn()
		case <-t.stop:
			stopAndDrainTimer(timer)
		}
	}()

	return t
}

// runEvery schedules fn to run every d until canceled.
func runEvery(clock clockwork.Clock, d time.Duration, fn func()) *task {
	t := &task{stop: make(chan struct{})}
	ticker := clock.NewTicker(d)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				fn()
			case <-t.stop:
				return
			}
		}
	}()

	return t
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired,
// so the garbage collector can reclaim it promptly.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
