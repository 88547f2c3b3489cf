package adapter

import (
	"context"
	"fmt"
	"time"
)

// RetryAdapter wraps another adapter and retries transient failures with
// exponential backoff. Retry is kept out of the pipeline stages so the core
// stays policy-free; non-transient failures propagate immediately.
type RetryAdapter struct {
	inner       Adapter
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRetryAdapter wraps inner with up to maxAttempts attempts per request.
func NewRetryAdapter(inner Adapter, maxAttempts int, baseDelay time.Duration) *RetryAdapter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &RetryAdapter{
		inner:       inner,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       sleepCtx,
	}
}

// Name returns the wrapped adapter's identifier.
func (a *RetryAdapter) Name() string {
	return a.inner.Name()
}

// Models returns the wrapped adapter's models.
func (a *RetryAdapter) Models() []string {
	return a.inner.Models()
}

// Complete forwards to the wrapped adapter, retrying transient errors.
func (a *RetryAdapter) Complete(ctx context.Context, req Request) (string, error) {
	var lastErr error
	delay := a.baseDelay

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		content, err := a.inner.Complete(ctx, req)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == a.maxAttempts {
			break
		}
		if err := a.sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}
	return "", fmt.Errorf("after %d attempts: %w", a.maxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
