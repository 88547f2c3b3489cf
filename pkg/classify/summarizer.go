package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zen-systems/taxnav/pkg/adapter"
	"go.uber.org/zap"
)

const summarySystem = "You are a product categorization assistant. Always use the most common, " +
	"standard product name (e.g., 'television' not 'display device'). Include helpful synonyms " +
	"in parentheses. Be direct and avoid flowery descriptions."

const summaryMaxTokens = 120

// Summarizer reduces an arbitrary product description to a short canonical
// restatement. Every later stage reasons over this one text, which keeps
// token cost bounded and stage inputs consistent.
type Summarizer struct {
	oracle adapter.Adapter
	model  string
	logger *zap.Logger
}

// NewSummarizer creates a summarizer backed by the given oracle and model.
func NewSummarizer(oracle adapter.Adapter, model string, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{oracle: oracle, model: model, logger: logger}
}

// Summarize produces a 40-60 word summary of the product. A failed oracle
// call aborts the classification; falling back to the raw input would feed
// an unnormalized, possibly huge text to every later stage.
func (s *Summarizer) Summarize(ctx context.Context, product string) (string, error) {
	content, err := s.oracle.Complete(ctx, adapter.Request{
		Model:     s.model,
		System:    summarySystem,
		Prompt:    summaryPrompt(product),
		MaxTokens: summaryMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	summary := strings.TrimSpace(content)
	s.logger.Debug("product summarized",
		zap.Int("input_len", len(product)),
		zap.Int("summary_len", len(summary)))
	return summary, nil
}

func summaryPrompt(product string) string {
	return fmt.Sprintf(`Summarize this product in 40-60 words to make its category crystal clear:
1. START with the EXACT common product name (e.g., "television" not "home entertainment display", "lipstick" not "lip color product")
2. Include 1-2 synonyms or alternative names in parentheses to clarify (e.g., "Television (TV, flat-screen display)")
3. Core function that defines its category
4. Key distinguishing features within that category
5. Primary use context

Use standard product names. Include clarifying synonyms. Be direct and specific.
IMPORTANT: Identify what the product IS, not what accessories it might need.
Example: "Television (TV, flat-screen display). Electronic device for viewing video content..."

Product: %s

Summary:`, product)
}
