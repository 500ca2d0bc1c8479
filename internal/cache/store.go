package cache

import (
	"context"
	"time"
)

// Store is the small key-value surface the bidder uses for run leases and
// strategy presets. Redis backs it in production; MemoryStore serves single
// instances and tests.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}
