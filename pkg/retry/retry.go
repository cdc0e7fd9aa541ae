// Package retry provides bounded retry-until-deadline and poll-until-deadline
// helpers for operations against externally owned, concurrently mutated state.
//
// Deadlines are wall-clock instants computed once by the caller (now + timeout),
// not per-iteration relative timeouts, so total wait time is bounded regardless
// of iteration count.
package retry

import (
	"context"
	"errors"
	"time"

	dErrors "convoy/pkg/domain-errors"
)

// ConflictInterval is the fixed sleep between attempts of a conflicting
// operation. Package-level so tests can shorten it.
var ConflictInterval = 100 * time.Millisecond

// UntilDeadline repeatedly invokes op while it fails with a recoverable
// optimistic-concurrency conflict (domain-errors CodeConflict). Once the
// deadline has passed it fails with CodeTimeout wrapping the last conflict.
// Any other error from op propagates immediately.
func UntilDeadline(ctx context.Context, deadline time.Time, op func() error) error {
	for {
		err := op()
		if err == nil {
			return nil
		}
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			return err
		}
		if !time.Now().Before(deadline) {
			return dErrors.WrapWithCode(err, dErrors.CodeTimeout, "deadline exceeded while retrying conflicting operation")
		}
		if serr := sleep(ctx, ConflictInterval); serr != nil {
			// A context deadline matching ours may fire mid-sleep; that is
			// still our timeout, not a distinct cancellation.
			if errors.Is(serr, context.DeadlineExceeded) && !time.Now().Before(deadline) {
				return dErrors.WrapWithCode(err, dErrors.CodeTimeout, "deadline exceeded while retrying conflicting operation")
			}
			return serr
		}
	}
}

// PollUntilDeadline repeatedly invokes probe every interval until it reports
// a found value. It fails with CodeTimeout if the deadline elapses with no
// success; callers wrap the timeout with their own context identifiers.
// Probe errors propagate immediately.
func PollUntilDeadline[T any](ctx context.Context, deadline time.Time, interval time.Duration, probe func() (T, bool, error)) (T, error) {
	var zero T
	for {
		v, found, err := probe()
		if err != nil {
			return zero, err
		}
		if found {
			return v, nil
		}
		if !time.Now().Before(deadline) {
			return zero, dErrors.New(dErrors.CodeTimeout, "deadline exceeded while polling")
		}
		if err := sleep(ctx, interval); err != nil {
			if errors.Is(err, context.DeadlineExceeded) && !time.Now().Before(deadline) {
				return zero, dErrors.New(dErrors.CodeTimeout, "deadline exceeded while polling")
			}
			return zero, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
