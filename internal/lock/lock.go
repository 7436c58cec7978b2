// README: Exclusive per-key locks with bounded acquisition.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reclaim/internal/types"
)

var ErrTimeout = fmt.Errorf("lock: %w", types.ErrTimeout)

// Release gives the lock back. Calling it more than once is a no-op.
type Release func()

// Locker hands out exclusive locks keyed by an arbitrary string. Acquire
// blocks until the lock is held, ctx is done or timeout elapses, whichever
// comes first. A non-positive timeout waits on ctx alone.
type Locker interface {
	Acquire(ctx context.Context, key string, timeout time.Duration) (Release, error)
}

func waitErr(ctx context.Context, key string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, key)
	}
	return ctx.Err()
}
