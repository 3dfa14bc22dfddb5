package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between search lookups.
const DefaultInterval = 1200 * time.Millisecond

// Clock abstracts time so tests can drive the limiter without sleeping.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	return SleepWithContext(ctx, d)
}

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Limiter enforces a fixed minimum interval between successive Acquire
// grants. It is not a token bucket: there is no burst allowance.
type Limiter struct {
	interval time.Duration
	clock    Clock

	mu   sync.Mutex
	next time.Time
}

// New builds a limiter. A nil clock uses the wall clock; a non-positive
// interval disables spacing.
func New(interval time.Duration, clock Clock) *Limiter {
	if clock == nil {
		clock = SystemClock()
	}
	if interval < 0 {
		interval = 0
	}
	return &Limiter{interval: interval, clock: clock}
}

// Interval reports the configured spacing.
func (l *Limiter) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.interval
}

// Acquire blocks until at least the configured interval has elapsed since the
// previous grant. The first call returns immediately. Concurrent callers each
// reserve their own slot, so spacing holds across goroutines.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := l.clock.Now()
	slot := now
	if l.next.After(now) {
		slot = l.next
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return nil
	}
	if err := l.clock.Sleep(ctx, wait); err != nil {
		l.release(slot)
		return err
	}
	return nil
}

// release gives back a reserved slot when the waiter was cancelled, as long
// as nobody queued behind it.
func (l *Limiter) release(slot time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.next.Equal(slot.Add(l.interval)) {
		l.next = slot
	}
}

// SleepWithContext blocks for d, returning early if ctx is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
