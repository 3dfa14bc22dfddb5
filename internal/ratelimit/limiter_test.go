package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
	err    error
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func TestAcquireFirstCallIsImmediate(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	lim := New(1200*time.Millisecond, clock)
	if err := lim.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(clock.sleeps) != 0 {
		t.Fatalf("expected no sleep on first acquire, got %v", clock.sleeps)
	}
}

func TestAcquireEnforcesSpacing(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	lim := New(1200*time.Millisecond, clock)
	ctx := context.Background()

	start := clock.now
	var grants []time.Time
	for i := 0; i < 4; i++ {
		if err := lim.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
		grants = append(grants, clock.now)
	}
	for i := 1; i < len(grants); i++ {
		if gap := grants[i].Sub(grants[i-1]); gap < 1200*time.Millisecond {
			t.Fatalf("grant %d only %s after previous", i, gap)
		}
	}
	if total := clock.now.Sub(start); total != 3600*time.Millisecond {
		t.Fatalf("expected 3.6s total spacing, got %s", total)
	}
}

func TestAcquireCountsElapsedWork(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	lim := New(1200*time.Millisecond, clock)
	ctx := context.Background()

	if err := lim.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	// A slow lookup (retries included) already used up part of the interval.
	clock.now = clock.now.Add(time.Second)
	if err := lim.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if len(clock.sleeps) != 1 || clock.sleeps[0] != 200*time.Millisecond {
		t.Fatalf("expected a single 200ms wait, got %v", clock.sleeps)
	}

	clock.now = clock.now.Add(5 * time.Second)
	if err := lim.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if len(clock.sleeps) != 1 {
		t.Fatalf("expected no wait once the interval elapsed, got %v", clock.sleeps)
	}
}

func TestAcquireCancelled(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	lim := New(time.Second, clock)
	if err := lim.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	clock.err = context.Canceled
	if err := lim.Acquire(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	// The cancelled waiter must not push the next slot further out.
	clock.err = nil
	clock.now = clock.now.Add(time.Second)
	if err := lim.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(clock.sleeps) != 0 {
		t.Fatalf("expected no wait after releasing the cancelled slot, got %v", clock.sleeps)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := lim.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled context to fail fast, got %v", err)
	}
}

func TestZeroIntervalNeverWaits(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	lim := New(0, clock)
	for i := 0; i < 3; i++ {
		if err := lim.Acquire(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if len(clock.sleeps) != 0 {
		t.Fatalf("expected no waits, got %v", clock.sleeps)
	}
}
