package lock

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyHeld is returned when the lease is held by another run
var ErrAlreadyHeld = errors.New("lock already held")

// Locker is a leased mutex keyed by name. The pipeline uses it to keep
// a manual trigger from overlapping a scheduled run; the lease expires
// on its own if a run dies without releasing.
type Locker interface {
	// Acquire takes the lease for name. The returned release function is
	// safe to call once; ErrAlreadyHeld means another run holds the lease.
	Acquire(ctx context.Context, name string, ttl time.Duration) (func(), error)
}
