package service

import (
	"context"
	"testing"
	"time"

	perr "llmo/internal/platform/errors"
)

func quietRetrier(attempts int) (retrier, *[]time.Duration) {
	r := newRetrier(attempts, 100*time.Millisecond, time.Second)
	var slept []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	r.jitter = func(d time.Duration) time.Duration { return d }
	return r, &slept
}

func TestRetrierBackoffDoubles(t *testing.T) {
	r, slept := quietRetrier(3)

	calls := 0
	err := r.do(context.Background(), func(context.Context) error {
		calls++
		return perr.Timeoutf("slow")
	})
	if !perr.IsCode(err, perr.ErrorCodeTimeout) {
		t.Fatalf("err = %v, want timeout", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(*slept) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *slept, want)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Fatalf("sleep[%d] = %v, want %v", i, (*slept)[i], d)
		}
	}
}

func TestRetrierStopsOnNonRetryable(t *testing.T) {
	r, slept := quietRetrier(5)

	calls := 0
	err := r.do(context.Background(), func(context.Context) error {
		calls++
		return perr.ValidationErrf("bad input")
	})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if calls != 1 || len(*slept) != 0 {
		t.Fatalf("calls = %d, sleeps = %d, want 1 and 0", calls, len(*slept))
	}
}

func TestRetrierRecovers(t *testing.T) {
	r, _ := quietRetrier(3)

	calls := 0
	err := r.do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return perr.RateLimitedf("429")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetrierHonorsCancelledContext(t *testing.T) {
	r, _ := quietRetrier(3)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := r.do(ctx, func(context.Context) error {
		calls++
		cancel()
		return perr.Timeoutf("slow")
	})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestHalfJitterBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 200; i++ {
		d := halfJitter(base)
		if d < base/2 || d >= base/2+base {
			t.Fatalf("jitter %v outside [%v, %v)", d, base/2, base/2+base)
		}
	}
	if halfJitter(0) != 0 {
		t.Fatal("jitter of zero must be zero")
	}
}
