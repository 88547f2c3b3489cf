package adapter

import (
	"context"
	"sync"
)

// MockAdapter returns scripted completions for local runs and tests. It
// replays the Script slice in call order, falling back to Default once the
// script is exhausted, and records every request it receives.
type MockAdapter struct {
	mu       sync.Mutex
	Script   []string
	Default  string
	Err      error
	ErrAt    int // 1-based call number that fails with Err; 0 fails every call
	calls    int
	requests []Request
}

// NewMockAdapter creates a mock adapter with a default completion.
func NewMockAdapter(defaultResponse string) *MockAdapter {
	return &MockAdapter{Default: defaultResponse}
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Complete replays the next scripted completion.
func (a *MockAdapter) Complete(_ context.Context, req Request) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls++
	a.requests = append(a.requests, req)

	if a.Err != nil && (a.ErrAt == 0 || a.ErrAt == a.calls) {
		return "", a.Err
	}
	if n := a.calls - 1; n < len(a.Script) {
		return a.Script[n], nil
	}
	return a.Default, nil
}

// Calls returns how many completions were requested.
func (a *MockAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Requests returns a copy of every request received, in call order.
func (a *MockAdapter) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Request, len(a.requests))
	copy(out, a.requests)
	return out
}
