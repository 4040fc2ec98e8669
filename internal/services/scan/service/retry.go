package service

import (
	"context"
	"math/rand"
	"time"

	perr "llmo/internal/platform/errors"
)

// Retry policy defaults
const (
	DefaultRetries     = 3
	DefaultBackoffBase = 500 * time.Millisecond
	DefaultCallTimeout = 20 * time.Second
)

// retrier runs external calls with a per-attempt deadline and exponential
// backoff. The delay doubles each attempt and gets up to +-50% jitter
type retrier struct {
	attempts int
	base     time.Duration
	timeout  time.Duration
	sleep    func(context.Context, time.Duration) error
	jitter   func(time.Duration) time.Duration
}

func newRetrier(attempts int, base, timeout time.Duration) retrier {
	if attempts <= 0 {
		attempts = DefaultRetries
	}
	if base <= 0 {
		base = DefaultBackoffBase
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return retrier{
		attempts: attempts,
		base:     base,
		timeout:  timeout,
		sleep:    sleepCtx,
		jitter:   halfJitter,
	}
}

// do runs fn until it succeeds, exhausts attempts, or hits a non-retryable
// error. Validation errors are never retried
func (r retrier) do(ctx context.Context, fn func(ctx context.Context) error) error {
	var last error
	delay := r.base
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, r.jitter(delay)); err != nil {
				return err
			}
			delay *= 2
		}

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		last = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !perr.Retryable(err) {
			return err
		}
	}
	return last
}

// halfJitter spreads d over [d/2, 3d/2)
func halfJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(d)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
