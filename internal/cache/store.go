package cache

import (
	"context"
	"time"
)

// Store is the shared counter/value cache used by the resend guard and the
// HTTP rate limiter. Implementations must be safe for concurrent use.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
