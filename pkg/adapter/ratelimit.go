package adapter

import (
	"context"
	"sync"
	"time"
)

// RateLimitedAdapter wraps another adapter and enforces a minimum interval
// between requests. Like RetryAdapter it is a decorator so rate policy stays
// outside the pipeline stages.
type RateLimitedAdapter struct {
	inner    Adapter
	interval time.Duration

	mu   sync.Mutex
	next time.Time
	now  func() time.Time
}

// NewRateLimitedAdapter wraps inner with at most one request per interval.
func NewRateLimitedAdapter(inner Adapter, interval time.Duration) *RateLimitedAdapter {
	return &RateLimitedAdapter{
		inner:    inner,
		interval: interval,
		now:      time.Now,
	}
}

// Name returns the wrapped adapter's identifier.
func (a *RateLimitedAdapter) Name() string {
	return a.inner.Name()
}

// Models returns the wrapped adapter's models.
func (a *RateLimitedAdapter) Models() []string {
	return a.inner.Models()
}

// Complete waits for the limiter slot, then forwards to the wrapped adapter.
func (a *RateLimitedAdapter) Complete(ctx context.Context, req Request) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	return a.inner.Complete(ctx, req)
}

// wait reserves the next send slot and blocks until it arrives. Slots are
// reserved under the lock so concurrent callers queue instead of bursting.
func (a *RateLimitedAdapter) wait(ctx context.Context) error {
	if a.interval <= 0 {
		return nil
	}

	a.mu.Lock()
	now := a.now()
	slot := a.next
	if slot.Before(now) {
		slot = now
	}
	a.next = slot.Add(a.interval)
	a.mu.Unlock()

	if d := slot.Sub(now); d > 0 {
		return sleepCtx(ctx, d)
	}
	return nil
}
