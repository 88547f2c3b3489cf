// Package adapter provides the oracle port for the classification pipeline:
// a narrow text-completion interface plus provider implementations and
// composable policy decorators.
package adapter

import "context"

// Request is a single stateless completion request. Every call is a blank
// slate: no conversation history is carried between requests, and providers
// pin temperature and top_p to 0 so identical requests yield identical
// completions.
type Request struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

// Adapter defines the interface for LLM provider adapters.
type Adapter interface {
	// Complete sends one request to the model and returns the completion
	// text. An empty completion is a valid response, not an error.
	Complete(ctx context.Context, req Request) (string, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

// DefaultMaxTokens is used when a request does not bound its output.
const DefaultMaxTokens = 1024

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return DefaultMaxTokens
}
