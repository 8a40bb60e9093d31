package ratelimit

import (
	"context"
	"time"
)

// Store is an atomic increment-with-expiry counter keyed by caller
// identity. Incr returns the count within the current window and when
// the window resets. Implementations must be safe for concurrent use
// across requests and, for the Redis store, across instances.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}
