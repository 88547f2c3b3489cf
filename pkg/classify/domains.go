package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zen-systems/taxnav/pkg/adapter"
	"github.com/zen-systems/taxnav/pkg/taxonomy"
	"go.uber.org/zap"
)

const domainSystem = "You are a product categorization assistant. Select top-level categories " +
	"from the provided list using exact spelling."

const domainMaxTokens = 64

// DomainSelector picks the top-level taxonomy branches worth searching. Two
// domains are requested: one misses products that straddle domains, three or
// more spends candidate-selection calls on improbable branches.
type DomainSelector struct {
	oracle adapter.Adapter
	index  *taxonomy.Index
	model  string
	limit  int
	logger *zap.Logger
}

// NewDomainSelector creates a selector over the index's domain list.
func NewDomainSelector(oracle adapter.Adapter, index *taxonomy.Index, model string, limit int, logger *zap.Logger) *DomainSelector {
	if limit <= 0 {
		limit = DefaultDomainCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DomainSelector{oracle: oracle, index: index, model: model, limit: limit, logger: logger}
}

// SelectDomains asks the oracle for the most plausible domains and validates
// every returned line against the real domain list. Names the oracle
// invented are dropped silently; if nothing survives, the classification has
// no search space left and fails rather than retrying with a looser prompt.
func (d *DomainSelector) SelectDomains(ctx context.Context, summary string) ([]string, error) {
	domains := d.index.Domains()

	content, err := d.oracle.Complete(ctx, adapter.Request{
		Model:     d.model,
		System:    domainSystem,
		Prompt:    domainPrompt(summary, domains, d.limit),
		MaxTokens: domainMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("select domains: %w", err)
	}

	valid := make(map[string]bool, len(domains))
	for _, domain := range domains {
		valid[domain] = true
	}

	var selected []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if !valid[name] {
			d.logger.Warn("oracle named a nonexistent domain", zap.String("domain", name))
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		selected = append(selected, name)
		if len(selected) == d.limit {
			break
		}
	}

	if len(selected) == 0 {
		return nil, ErrNoDomains
	}
	d.logger.Debug("domains selected", zap.Strings("domains", selected))
	return selected, nil
}

func domainPrompt(summary string, domains []string, limit int) string {
	return fmt.Sprintf(`Product: %s

Select exactly %d categories from this list that best match the product:

%s

Return one category per line:`, summary, limit, strings.Join(domains, "\n"))
}
