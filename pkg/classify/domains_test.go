package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zen-systems/taxnav/pkg/adapter"
	"github.com/zen-systems/taxnav/pkg/taxonomy"
)

func buildIndex(t *testing.T, source string) *taxonomy.Index {
	t.Helper()
	idx, err := taxonomy.Build(source)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return idx
}

const threeDomainSource = `# test taxonomy
Electronics > Video > Televisions
Electronics > Audio > Headphones
Apparel > Footwear > Shoes
Home > Kitchen > Blenders
`

func TestSelectDomainsValidAnswer(t *testing.T) {
	idx := buildIndex(t, threeDomainSource)
	mock := adapter.NewMockAdapter("Electronics\nApparel")

	sel := NewDomainSelector(mock, idx, "gpt-4.1-nano", 2, nil)
	domains, err := sel.SelectDomains(context.Background(), "a television")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(domains) != 2 || domains[0] != "Electronics" || domains[1] != "Apparel" {
		t.Fatalf("domains: %v", domains)
	}

	prompt := mock.Requests()[0].Prompt
	for _, domain := range idx.Domains() {
		if !strings.Contains(prompt, domain) {
			t.Fatalf("prompt missing domain %q", domain)
		}
	}
}

func TestSelectDomainsDropsHallucinations(t *testing.T) {
	idx := buildIndex(t, threeDomainSource)
	mock := adapter.NewMockAdapter("Gadgets\nElectronics\nFurniture")

	sel := NewDomainSelector(mock, idx, "gpt-4.1-nano", 2, nil)
	domains, err := sel.SelectDomains(context.Background(), "a television")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(domains) != 1 || domains[0] != "Electronics" {
		t.Fatalf("domains: %v", domains)
	}
}

func TestSelectDomainsDeduplicates(t *testing.T) {
	idx := buildIndex(t, threeDomainSource)
	mock := adapter.NewMockAdapter("Electronics\nElectronics\nHome")

	sel := NewDomainSelector(mock, idx, "gpt-4.1-nano", 2, nil)
	domains, err := sel.SelectDomains(context.Background(), "a blender")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(domains) != 2 || domains[0] != "Electronics" || domains[1] != "Home" {
		t.Fatalf("domains: %v", domains)
	}
}

func TestSelectDomainsCapsAtLimit(t *testing.T) {
	idx := buildIndex(t, threeDomainSource)
	mock := adapter.NewMockAdapter("Electronics\nApparel\nHome")

	sel := NewDomainSelector(mock, idx, "gpt-4.1-nano", 2, nil)
	domains, err := sel.SelectDomains(context.Background(), "something")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(domains) != 2 {
		t.Fatalf("domains: %v", domains)
	}
}

func TestSelectDomainsAllInvalidIsTerminal(t *testing.T) {
	idx := buildIndex(t, threeDomainSource)
	mock := adapter.NewMockAdapter("Gadgets\nWidgets")

	sel := NewDomainSelector(mock, idx, "gpt-4.1-nano", 2, nil)
	_, err := sel.SelectDomains(context.Background(), "a television")
	if !errors.Is(err, ErrNoDomains) {
		t.Fatalf("expected ErrNoDomains, got %v", err)
	}
	if mock.Calls() != 1 {
		t.Fatalf("no retry expected, calls=%d", mock.Calls())
	}
}
