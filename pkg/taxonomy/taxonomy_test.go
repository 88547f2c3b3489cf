package taxonomy

import (
	"errors"
	"strings"
	"testing"
)

const toySource = `# Product_Taxonomy_Version: test
Electronics
Electronics > Video
Electronics > Video > Televisions
Electronics > Audio
Electronics > Audio > Headphones
Apparel
Apparel > Footwear
Apparel > Footwear > Shoes
`

func TestBuildToyTaxonomy(t *testing.T) {
	idx, err := Build(toySource)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if got := idx.LeafCount(); got != 3 {
		t.Fatalf("leaf count: got %d want 3", got)
	}

	domains := idx.Domains()
	if len(domains) != 2 || domains[0] != "Electronics" || domains[1] != "Apparel" {
		t.Fatalf("domains: %v", domains)
	}

	leaves := idx.Leaves("Electronics")
	if len(leaves) != 2 {
		t.Fatalf("electronics leaves: %v", leaves)
	}
	if leaves[0].Leaf() != "Televisions" || leaves[1].Leaf() != "Headphones" {
		t.Fatalf("leaf order: %q %q", leaves[0].Leaf(), leaves[1].Leaf())
	}

	path, ok := idx.LeafPath("Electronics", "Headphones")
	if !ok || path != "Electronics > Audio > Headphones" {
		t.Fatalf("leaf path: %q ok=%v", path, ok)
	}
	if _, ok := idx.LeafPath("Apparel", "Headphones"); ok {
		t.Fatalf("leaf path matched across domains")
	}
}

func TestLeafDetectionNonAdjacentChild(t *testing.T) {
	// The child of "Electronics > Video" is declared far from its parent,
	// after many unrelated lines. A neighbor-only check would wrongly mark
	// the parent as a leaf.
	source := strings.Join([]string{
		"# header",
		"Electronics > Video",
		"Apparel > Footwear > Shoes",
		"Apparel > Footwear > Boots",
		"Home > Kitchen > Blenders",
		"Home > Kitchen > Toasters",
		"Electronics > Video > Televisions",
	}, "\n")

	idx, err := Build(source)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	for _, e := range idx.Entries() {
		if e.FullPath == "Electronics > Video" && e.IsLeaf {
			t.Fatalf("parent with non-adjacent child marked as leaf")
		}
		if e.FullPath == "Electronics > Video > Televisions" && !e.IsLeaf {
			t.Fatalf("true leaf not marked")
		}
	}

	leaves := idx.Leaves("Electronics")
	if len(leaves) != 1 || leaves[0].Leaf() != "Televisions" {
		t.Fatalf("electronics leaves: %v", leaves)
	}
}

func TestBuildHeaderOnlyWhenCommented(t *testing.T) {
	// A first line without "#" is a real path, not a header.
	idx, err := Build("Collectibles\nCollectibles > Coins\n")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := idx.LeafCount(); got != 1 {
		t.Fatalf("leaf count: got %d want 1", got)
	}
	if idx.Domains()[0] != "Collectibles" {
		t.Fatalf("domains: %v", idx.Domains())
	}
}

func TestBuildRejectsEmptySource(t *testing.T) {
	for _, source := range []string{"", "\n\n", "# header only\n"} {
		_, err := Build(source)
		var srcErr *SourceError
		if !errors.As(err, &srcErr) {
			t.Fatalf("source %q: expected SourceError, got %v", source, err)
		}
	}
}

func TestBuildSkipsBlankLines(t *testing.T) {
	idx, err := Build("# h\nA > B\n\n\nA > B > C\n")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(idx.Entries()) != 2 {
		t.Fatalf("entries: %v", idx.Entries())
	}
}
