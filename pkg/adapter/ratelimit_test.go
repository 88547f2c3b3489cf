package adapter

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitSpacesSlots(t *testing.T) {
	interval := 5 * time.Millisecond
	limited := NewRateLimitedAdapter(NewMockAdapter("ok"), interval)
	base := time.Unix(1000, 0)
	limited.now = func() time.Time { return base }

	// First call goes out immediately, later calls queue behind it.
	for i := 0; i < 3; i++ {
		if err := limited.wait(context.Background()); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
		if d := limited.next.Sub(base); d != time.Duration(i+1)*interval {
			t.Fatalf("slot %d: next offset %v", i, d)
		}
	}
}

func TestRateLimitZeroIntervalPassesThrough(t *testing.T) {
	mock := NewMockAdapter("ok")
	limited := NewRateLimitedAdapter(mock, 0)

	for i := 0; i < 5; i++ {
		if _, err := limited.Complete(context.Background(), Request{Prompt: "p"}); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}
	if mock.Calls() != 5 {
		t.Fatalf("calls: got %d want 5", mock.Calls())
	}
}

func TestRateLimitHonorsCancellation(t *testing.T) {
	limited := NewRateLimitedAdapter(NewMockAdapter("ok"), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := limited.Complete(ctx, Request{Prompt: "first"}); err != nil {
		t.Fatalf("first complete: %v", err)
	}

	cancel()
	if _, err := limited.Complete(ctx, Request{Prompt: "second"}); err == nil {
		t.Fatalf("expected context error")
	}
}
