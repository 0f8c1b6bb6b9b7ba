package gpioirq

import (
	"context"
	"fmt"
	"time"
)

// Serve runs deferred work for a signal. It takes w with the given timeout
// and calls work after each successful take; a timeout just loops. Serve
// returns ctx.Err() once ctx is done, or the first error work returns.
// The timeout must be positive.
func Serve(ctx context.Context, w *Waiter, timeout time.Duration, work func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: serve timeout must be positive, got %v", ErrPkg, timeout)
	}
	t := time.NewTimer(timeout)
	defer t.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// An outstanding unit wins over an expired timeout.
		if !w.TryTake() {
			t.Reset(timeout)
			select {
			case <-w.c:
			case <-t.C:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := work(ctx); err != nil {
			return err
		}
	}
}

// Pulse drives out to active for d, then to the opposite level.
// It returns early, with the output restored, if ctx is done.
func Pulse(ctx context.Context, out Output, active Level, d time.Duration) error {
	if err := out.Out(active); err != nil {
		return err
	}
	err := Sleep(ctx, d)
	if rerr := out.Out(!active); rerr != nil {
		return rerr
	}
	return err
}

// Sleep is a task-context delay that gives up when ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
