package gpioirq

import (
	"context"
	"time"
)

// Tick is the length of one scheduler tick.
const Tick = time.Millisecond

// Ticks converts a count of scheduler ticks to a duration.
func Ticks(n int) time.Duration {
	return time.Duration(n) * Tick
}

// NewSignal creates a binary semaphore and returns its two ends. The Giver
// may be used from interrupt context, the Waiter only from a task.
//
// The semaphore holds at most one unit. Gives that arrive before the unit
// is taken are coalesced, so a successful take means at least one event
// occurred since the previous take.
//
// Create the signal before attaching any handler that gives it, and attach
// before arming the port.
func NewSignal() (*Giver, *Waiter) {
	c := make(chan struct{}, 1)
	return &Giver{c: c}, &Waiter{c: c}
}

// Giver is the interrupt-context end of a signal.
type Giver struct {
	c chan struct{}
}

// GiveFromISR releases the signal. It never blocks; if a unit is already
// outstanding the give is absorbed.
func (g *Giver) GiveFromISR() {
	select {
	case g.c <- struct{}{}:
	default:
		// Already signalled
	}
}

// Handler returns a Handler that gives the signal each time it fires.
func (g *Giver) Handler() Handler {
	return HandlerFunc(g.GiveFromISR)
}

// Waiter is the task-context end of a signal.
type Waiter struct {
	c chan struct{}
}

// Take blocks until the signal is given or timeout elapses, and reports
// whether the unit was obtained. A false result means no event yet, not a
// failure. A non-positive timeout polls.
func (w *Waiter) Take(timeout time.Duration) bool {
	if timeout <= 0 {
		return w.TryTake()
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-w.c:
		return true
	case <-t.C:
		return false
	}
}

// TakeContext blocks until the signal is given or ctx is done.
func (w *Waiter) TakeContext(ctx context.Context) error {
	select {
	case <-w.c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryTake takes the unit if one is outstanding, without blocking.
func (w *Waiter) TryTake() bool {
	select {
	case <-w.c:
		return true
	default:
		return false
	}
}
