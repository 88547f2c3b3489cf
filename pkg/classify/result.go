package classify

import "time"

// NoClassification is the sentinel path reported when classification fails.
// Failure is a first-class outcome: callers get this marker plus a reason,
// never a panic or a fabricated category.
const NoClassification = "False"

// Result is the immutable outcome of one classification.
type Result struct {
	Success   bool          `json:"success"`
	Paths     []string      `json:"paths"`
	BestIndex int           `json:"best_index"`
	Leaf      string        `json:"leaf,omitempty"`
	FullPath  string        `json:"full_path,omitempty"`
	Calls     int           `json:"calls"`
	Elapsed   time.Duration `json:"elapsed"`
	Reason    string        `json:"reason,omitempty"`
	Trace     *Trace        `json:"trace,omitempty"`
}

// Trace is the stable read-only view of intermediate stage output, for
// display and diagnostics. Interactive layers depend on this contract
// instead of reaching into component internals.
type Trace struct {
	Summary    string             `json:"summary,omitempty"`
	Domains    []string           `json:"domains,omitempty"`
	Candidates []DomainCandidates `json:"candidates,omitempty"`
}

// DomainCandidates lists the leaves chosen within one domain, in selection
// order.
type DomainCandidates struct {
	Domain string   `json:"domain"`
	Leaves []string `json:"leaves"`
}
