package classify

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/zen-systems/taxnav/pkg/adapter"
	"github.com/zen-systems/taxnav/pkg/taxonomy"
	"go.uber.org/zap"
)

const candidateSystem = "You are a product categorization assistant. Select categories by their " +
	"numbers only. Return only numbers, one per line."

const candidateMaxTokens = 128

// noMatchToken is what the oracle is told to return for an empty batch.
const noMatchToken = "NONE"

var numberPattern = regexp.MustCompile(`\d+`)

// CandidateSelector picks every plausible leaf within one domain. Leaves are
// shown to the oracle in fixed-size batches so a domain with hundreds of
// leaves never exceeds the context limit and no leaf is left unseen because
// it sits late in the list. The oracle answers with batch-local numbers, not
// names: a name can be misspelled into a hallucination, a number outside the
// batch range cannot survive the bounds check.
type CandidateSelector struct {
	oracle      adapter.Adapter
	index       *taxonomy.Index
	model       string
	batchSize   int
	maxPerBatch int
	logger      *zap.Logger
}

// NewCandidateSelector creates a selector with the given batch geometry.
func NewCandidateSelector(oracle adapter.Adapter, index *taxonomy.Index, model string, batchSize, maxPerBatch int, logger *zap.Logger) *CandidateSelector {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxPerBatch <= 0 {
		maxPerBatch = DefaultMaxPerBatch
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateSelector{
		oracle:      oracle,
		index:       index,
		model:       model,
		batchSize:   batchSize,
		maxPerBatch: maxPerBatch,
		logger:      logger,
	}
}

// SelectCandidates returns the de-duplicated leaf names the oracle matched
// within one domain, and how many oracle calls it made. Leaves named in
// excluded were claimed by an earlier domain pass and are not shown again.
// An empty result is a valid outcome; a failed batch call is not, because a
// silently incomplete candidate set would bias arbitration with no signal.
func (c *CandidateSelector) SelectCandidates(ctx context.Context, summary, domain string, excluded map[string]bool) ([]string, int, error) {
	var leaves []string
	for _, e := range c.index.Leaves(domain) {
		if excluded[e.Leaf()] {
			continue
		}
		leaves = append(leaves, e.Leaf())
	}
	if len(leaves) == 0 {
		return nil, 0, nil
	}

	batchCount := (len(leaves) + c.batchSize - 1) / c.batchSize
	calls := 0
	var picked []string
	seen := make(map[string]bool)

	for start := 0; start < len(leaves); start += c.batchSize {
		end := start + c.batchSize
		if end > len(leaves) {
			end = len(leaves)
		}
		batch := leaves[start:end]
		batchNum := start/c.batchSize + 1

		calls++
		content, err := c.oracle.Complete(ctx, adapter.Request{
			Model:     c.model,
			System:    candidateSystem,
			Prompt:    c.batchPrompt(summary, batch, batchNum, batchCount),
			MaxTokens: candidateMaxTokens,
		})
		if err != nil {
			return nil, calls, fmt.Errorf("batch %d/%d in %q: %w", batchNum, batchCount, domain, err)
		}

		for _, n := range c.parseSelections(content, len(batch), domain, batchNum) {
			leaf := batch[n-1]
			if seen[leaf] {
				continue
			}
			seen[leaf] = true
			picked = append(picked, leaf)
		}
	}

	c.logger.Debug("candidates selected",
		zap.String("domain", domain),
		zap.Int("shown", len(leaves)),
		zap.Int("batches", batchCount),
		zap.Int("picked", len(picked)))
	return picked, calls, nil
}

// parseSelections extracts the batch-local numbers from a response, keeping
// only values inside [1, batchLen]. Out-of-range numbers are dropped, never
// clamped into range.
func (c *CandidateSelector) parseSelections(content string, batchLen int, domain string, batchNum int) []int {
	trimmed := strings.TrimSpace(content)
	if strings.EqualFold(trimmed, noMatchToken) {
		return nil
	}

	var selections []int
	for _, line := range strings.Split(trimmed, "\n") {
		for _, match := range numberPattern.FindAllString(line, -1) {
			n, err := strconv.Atoi(match)
			if err != nil {
				continue
			}
			if n < 1 || n > batchLen {
				c.logger.Warn("oracle returned out-of-range selection",
					zap.String("domain", domain),
					zap.Int("batch", batchNum),
					zap.Int("selection", n),
					zap.Int("batch_len", batchLen))
				continue
			}
			selections = append(selections, n)
		}
	}
	if len(selections) > c.maxPerBatch {
		selections = selections[:c.maxPerBatch]
	}
	return selections
}

func (c *CandidateSelector) batchPrompt(summary string, batch []string, batchNum, batchCount int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Product: %s\n\n", summary)
	fmt.Fprintf(&sb, "Select up to %d categories that match this product from the numbered list below.\n", c.maxPerBatch)
	sb.WriteString("Think carefully about what the product actually is.\n")
	sb.WriteString("Be aware: The list may contain both main product categories AND accessories/parts.\n")
	sb.WriteString("IMPORTANT: If the product is a complete item (like a circular saw), choose the main product category (e.g., 'Handheld Circular Saws'), NOT the accessories category (e.g., 'Handheld Circular Saw Accessories').\n")
	sb.WriteString("Only choose accessory categories if the product is actually an accessory/part, not the main product itself.\n")
	sb.WriteString("Examples: A TV should be 'Televisions' not 'TV Mounts'; A laptop should be 'Laptops' not 'Laptop Cases'.\n\n")

	fmt.Fprintf(&sb, "Categories to choose from (batch %d of %d):\n", batchNum, batchCount)
	for i, leaf := range batch {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, leaf)
	}

	fmt.Fprintf(&sb, "\nReturn ONLY the numbers of matching categories (up to %d), one per line.\n", c.maxPerBatch)
	fmt.Fprintf(&sb, "If no categories match, return '%s'.\n", noMatchToken)
	sb.WriteString("Example response:\n3\n7\n15")
	return sb.String()
}
