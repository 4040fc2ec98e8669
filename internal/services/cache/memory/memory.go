// Package memory provides the in-process cache backend
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	dom "llmo/internal/services/cache/domain"
)

// Backend is a map guarded by an RWMutex. A sweeper goroutine started with
// StartSweeper reclaims expired entries; expired entries read as absent
// either way
type Backend struct {
	mu      sync.RWMutex
	entries map[string]*dom.Entry
	now     func() time.Time
}

// New constructs an empty Backend
func New() *Backend {
	return &Backend{
		entries: make(map[string]*dom.Entry),
		now:     time.Now,
	}
}

// NewWithClock constructs a Backend with an injected clock for tests
func NewWithClock(now func() time.Time) *Backend {
	b := New()
	b.now = now
	return b
}

// Get returns the payload for key when present and unexpired, bumping the
// hit count
func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.ExpiresAt.After(b.now()) {
		delete(b.entries, key)
		return nil, false, nil
	}
	e.HitCount++
	return e.Payload, true, nil
}

// Put stores payload under key, replacing any previous value
func (b *Backend) Put(_ context.Context, key string, payload []byte, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = &dom.Entry{
		Key:       key,
		Payload:   payload,
		CreatedAt: b.now(),
		ExpiresAt: expiresAt,
	}
	return nil
}

// Invalidate removes entries whose key starts with prefix; empty prefix
// clears everything
func (b *Backend) Invalidate(_ context.Context, prefix string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	for k := range b.entries {
		if prefix == "" || strings.HasPrefix(k, prefix) {
			delete(b.entries, k)
			n++
		}
	}
	return n, nil
}

// Count returns the number of resident entries, expired included
func (b *Backend) Count(_ context.Context) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return int64(len(b.entries)), nil
}

// Sweep drops expired entries and reports how many were reclaimed
func (b *Backend) Sweep(_ context.Context) (int64, error) {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	for k, e := range b.entries {
		if !e.ExpiresAt.After(now) {
			delete(b.entries, k)
			n++
		}
	}
	return n, nil
}

// StartSweeper sweeps every interval until ctx is done
func (b *Backend) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				_, _ = b.Sweep(ctx)
			}
		}
	}()
}
