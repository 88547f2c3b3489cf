// Package classify implements the progressive-narrowing classification
// pipeline: summarize the product, pick plausible top-level domains, gather
// candidate leaves per domain in bounded batches, then arbitrate a single
// winner. The oracle is treated as untrusted input; every stage validates
// what it returns before the next stage sees it.
package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/zen-systems/taxnav/pkg/adapter"
	"github.com/zen-systems/taxnav/pkg/taxonomy"
	"go.uber.org/zap"
)

// Pipeline runs classifications against one immutable taxonomy index. It is
// safe for concurrent use: per-request state lives on the stack of Classify
// and nothing mutable is shared between requests.
type Pipeline struct {
	oracle adapter.Adapter
	index  *taxonomy.Index
	logger *zap.Logger

	summaryModel string
	selectModel  string
	arbiterModel string
	batchSize    int
	maxPerBatch  int
	domainCount  int
}

// New creates a pipeline over an oracle and a taxonomy index.
func New(oracle adapter.Adapter, index *taxonomy.Index, opts ...Option) *Pipeline {
	p := &Pipeline{
		oracle:       oracle,
		index:        index,
		logger:       zap.NewNop(),
		summaryModel: DefaultSummaryModel,
		selectModel:  DefaultSelectModel,
		arbiterModel: DefaultArbiterModel,
		batchSize:    DefaultBatchSize,
		maxPerBatch:  DefaultMaxPerBatch,
		domainCount:  DefaultDomainCount,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// candidate pairs a selected leaf with the domain it was selected from, so
// the leaf name resolves to an unambiguous full path even when two domains
// share a leaf name.
type candidate struct {
	domain string
	leaf   string
}

// Classify runs the full pipeline on one product text. Stages execute in
// fixed order and no stage is retried; the first failure terminates the
// request and is reported in the result rather than returned as an error.
func (p *Pipeline) Classify(ctx context.Context, product string) Result {
	start := time.Now()
	calls := 0
	trace := &Trace{}

	fail := func(stage Stage, err error) Result {
		stageErr := &StageError{Stage: stage, Err: err}
		p.logger.Warn("classification failed",
			zap.String("stage", stage.String()),
			zap.Int("calls", calls),
			zap.Error(err))
		return Result{
			Success:   false,
			Paths:     []string{NoClassification},
			BestIndex: -1,
			Calls:     calls,
			Elapsed:   time.Since(start),
			Reason:    stageErr.Error(),
			Trace:     trace,
		}
	}

	summarizer := NewSummarizer(p.oracle, p.summaryModel, p.logger)
	calls++
	summary, err := summarizer.Summarize(ctx, product)
	if err != nil {
		return fail(StageSummary, err)
	}
	trace.Summary = summary

	domainSel := NewDomainSelector(p.oracle, p.index, p.selectModel, p.domainCount, p.logger)
	calls++
	domains, err := domainSel.SelectDomains(ctx, summary)
	if err != nil {
		return fail(StageDomains, err)
	}
	trace.Domains = domains

	candidateSel := NewCandidateSelector(p.oracle, p.index, p.selectModel, p.batchSize, p.maxPerBatch, p.logger)
	excluded := make(map[string]bool)
	var candidates []candidate
	for _, domain := range domains {
		leaves, batchCalls, err := candidateSel.SelectCandidates(ctx, summary, domain, excluded)
		calls += batchCalls
		if err != nil {
			return fail(StageCandidates, err)
		}
		for _, leaf := range leaves {
			excluded[leaf] = true
			candidates = append(candidates, candidate{domain: domain, leaf: leaf})
		}
		trace.Candidates = append(trace.Candidates, DomainCandidates{Domain: domain, Leaves: leaves})
	}
	if len(candidates) == 0 {
		return fail(StageCandidates, ErrNoCandidates)
	}

	// Exactly one survivor needs no arbitration call.
	best := 0
	if len(candidates) > 1 {
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.leaf
		}
		arbiter := NewArbiter(p.oracle, p.arbiterModel, p.logger)
		calls++
		best, err = arbiter.SelectBest(ctx, summary, names)
		if err != nil {
			return fail(StageArbitration, err)
		}
	}

	paths := make([]string, len(candidates))
	for i, c := range candidates {
		path, ok := p.index.LeafPath(c.domain, c.leaf)
		if !ok {
			return fail(StageCandidates, fmt.Errorf("leaf %q missing from domain %q", c.leaf, c.domain))
		}
		paths[i] = path
	}

	result := Result{
		Success:   true,
		Paths:     paths,
		BestIndex: best,
		Leaf:      candidates[best].leaf,
		FullPath:  paths[best],
		Calls:     calls,
		Elapsed:   time.Since(start),
		Trace:     trace,
	}
	p.logger.Info("classification complete",
		zap.String("leaf", result.Leaf),
		zap.String("path", result.FullPath),
		zap.Int("candidates", len(candidates)),
		zap.Int("calls", calls),
		zap.Duration("elapsed", result.Elapsed))
	return result
}
