// Package taxonomy parses a flat category taxonomy file into an immutable
// index of paths, leaf nodes, and top-level domains.
package taxonomy

import (
	"fmt"
	"strings"
)

// Separator joins path segments in the taxonomy source.
const Separator = " > "

// Entry is one path from the taxonomy source.
type Entry struct {
	FullPath string
	Segments []string
	IsLeaf   bool
}

// Domain returns the top-level category of the entry.
func (e Entry) Domain() string {
	return e.Segments[0]
}

// Leaf returns the deepest segment of the entry.
func (e Entry) Leaf() string {
	return e.Segments[len(e.Segments)-1]
}

// SourceError reports an unusable taxonomy source.
type SourceError struct {
	Reason string
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("taxonomy source: %s", e.Reason)
}

// Index holds the parsed taxonomy. It is read-only after Build and safe to
// share across concurrent classifications.
type Index struct {
	entries  []Entry
	domains  []string
	byDomain map[string][]Entry
}

// Build parses raw taxonomy text. Lines hold one path each, segments joined
// by Separator; a leading line starting with "#" is a header and is dropped.
//
// Leaf detection scans every other line: a path is a leaf only when no other
// line extends it past another Separator. A neighbor-only check would mark
// parents as leaves whenever the file is not sorted by depth, so the full
// scan is required for correctness, not an optimization target.
func Build(source string) (*Index, error) {
	lines := splitLines(source)
	if len(lines) == 0 {
		return nil, &SourceError{Reason: "empty source"}
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, Entry{
			FullPath: line,
			Segments: strings.Split(line, Separator),
		})
	}

	for i := range entries {
		entries[i].IsLeaf = isLeaf(entries[i].FullPath, lines, i)
	}

	idx := &Index{
		entries:  entries,
		byDomain: make(map[string][]Entry),
	}
	for _, e := range entries {
		if !e.IsLeaf {
			continue
		}
		domain := e.Domain()
		if _, seen := idx.byDomain[domain]; !seen {
			idx.domains = append(idx.domains, domain)
		}
		idx.byDomain[domain] = append(idx.byDomain[domain], e)
	}

	if len(idx.domains) == 0 {
		return nil, &SourceError{Reason: "no leaf entries"}
	}
	return idx, nil
}

func splitLines(source string) []string {
	var lines []string
	for i, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}
		if i == 0 && strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isLeaf(path string, lines []string, self int) bool {
	prefix := path + Separator
	for j, other := range lines {
		if j == self {
			continue
		}
		if strings.HasPrefix(other, prefix) {
			return false
		}
	}
	return true
}

// Entries returns every parsed path in source order.
func (x *Index) Entries() []Entry {
	return x.entries
}

// Domains returns the distinct top-level categories that contain at least
// one leaf, in first-seen source order.
func (x *Index) Domains() []string {
	return x.domains
}

// Leaves returns the leaf entries under a domain in source order.
func (x *Index) Leaves(domain string) []Entry {
	return x.byDomain[domain]
}

// LeafCount returns the number of leaf entries across all domains.
func (x *Index) LeafCount() int {
	n := 0
	for _, e := range x.entries {
		if e.IsLeaf {
			n++
		}
	}
	return n
}

// LeafPath resolves a leaf name within a domain to its full path. The second
// return is false when the domain has no leaf with that name.
func (x *Index) LeafPath(domain, leaf string) (string, bool) {
	for _, e := range x.byDomain[domain] {
		if e.Leaf() == leaf {
			return e.FullPath, true
		}
	}
	return "", false
}
