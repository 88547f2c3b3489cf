package classify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zen-systems/taxnav/pkg/adapter"
	"go.uber.org/zap"
)

const arbiterSystem = "You are a product categorization assistant. Select the single best " +
	"matching category by its number."

const arbiterMaxTokens = 16

// Arbiter makes the final pick from the merged candidate list.
type Arbiter struct {
	oracle adapter.Adapter
	model  string
	logger *zap.Logger
}

// NewArbiter creates an arbiter backed by the given oracle and model.
func NewArbiter(oracle adapter.Adapter, model string, logger *zap.Logger) *Arbiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Arbiter{oracle: oracle, model: model, logger: logger}
}

// SelectBest returns the 0-based index of the best candidate. A response
// without a usable in-range number fails the classification: picking the
// first candidate instead would dress genuine ambiguity up as a confident
// answer.
func (a *Arbiter) SelectBest(ctx context.Context, summary string, candidates []string) (int, error) {
	if len(candidates) == 0 {
		return -1, fmt.Errorf("%w: empty candidate list", ErrInvalidSelection)
	}

	content, err := a.oracle.Complete(ctx, adapter.Request{
		Model:     a.model,
		System:    arbiterSystem,
		Prompt:    arbiterPrompt(summary, candidates),
		MaxTokens: arbiterMaxTokens,
	})
	if err != nil {
		return -1, fmt.Errorf("select best: %w", err)
	}

	match := numberPattern.FindString(content)
	if match == "" {
		return -1, fmt.Errorf("%w: no number in response %q", ErrInvalidSelection, strings.TrimSpace(content))
	}
	n, err := strconv.Atoi(match)
	if err != nil || n < 1 || n > len(candidates) {
		return -1, fmt.Errorf("%w: %q outside [1, %d]", ErrInvalidSelection, match, len(candidates))
	}

	a.logger.Debug("arbitration complete",
		zap.Int("selection", n),
		zap.String("leaf", candidates[n-1]))
	return n - 1, nil
}

func arbiterPrompt(summary string, candidates []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Product: %s\n\n", summary)
	sb.WriteString("IMPORTANT: From amongst the provided options below, select the category that is MOST LIKELY to roughly describe this product.\n")
	sb.WriteString("Don't worry about finding a perfect match - just pick the option that seems most likely to be correct.\n")
	sb.WriteString("If multiple options seem reasonable, pick the one that feels most probable.\n\n")

	sb.WriteString("Available categories:\n")
	for i, leaf := range candidates {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, leaf)
	}

	fmt.Fprintf(&sb, "\nReturn ONLY the number of your selection (e.g., \"1\" or \"2\").\n")
	fmt.Fprintf(&sb, "The number must be between 1 and %d.\n", len(candidates))
	return sb.String()
}
