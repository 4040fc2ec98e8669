package domain

import (
	"context"
	"time"
)

// Store is the caller-facing cache port. Reads and writes fail open: a
// backend error reads as a miss and never fails the caller
type Store interface {
	Get(ctx context.Context, queryType string, params map[string]string) ([]byte, bool, error)
	Put(ctx context.Context, queryType string, params map[string]string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, prefix string) (int64, error)
	Stats(ctx context.Context) (Stats, error)
}

// Backend is the storage half the service drives. Keys are already resolved
// storage keys; expired entries read as absent
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, payload []byte, expiresAt time.Time) error
	Invalidate(ctx context.Context, prefix string) (int64, error)
	Count(ctx context.Context) (int64, error)
	Sweep(ctx context.Context) (int64, error)
}
