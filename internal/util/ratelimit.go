package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces calls evenly so that at most the configured number run
// per minute. Each Wait reserves the next free slot; when the slot lies in
// the future, Wait sleeps until it arrives. Under contention slots are
// handed out in reservation order.
type RateLimiter struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time // earliest start of the next call
}

// NewRateLimiter creates a RateLimiter allowing perMinute calls per minute.
// The first call never waits.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &RateLimiter{interval: time.Minute / time.Duration(perMinute)}
}

// Wait blocks until the caller's reserved slot arrives or ctx is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	now := time.Now()
	slot := rl.next
	if slot.Before(now) {
		slot = now
	}
	rl.next = slot.Add(rl.interval)
	rl.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
