package classify

import "go.uber.org/zap"

// Tuning defaults. Batch size bounds prompt length so every leaf of a large
// domain is shown to the oracle in some batch; the per-batch cap bounds
// worst-case selections per call, not the global candidate count.
const (
	DefaultBatchSize    = 100
	DefaultMaxPerBatch  = 15
	DefaultDomainCount  = 2
	DefaultSummaryModel = "gpt-4.1-nano"
	DefaultSelectModel  = "gpt-4.1-nano"
	DefaultArbiterModel = "gpt-4.1-mini"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStageModels sets the model per stage: summary and selection run on the
// cheap model, arbitration on the stronger one.
func WithStageModels(summary, selection, arbitration string) Option {
	return func(p *Pipeline) {
		if summary != "" {
			p.summaryModel = summary
		}
		if selection != "" {
			p.selectModel = selection
		}
		if arbitration != "" {
			p.arbiterModel = arbitration
		}
	}
}

// WithBatchSize sets how many leaves are shown per candidate-selection call.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithMaxPerBatch caps how many selections are requested per batch.
func WithMaxPerBatch(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxPerBatch = n
		}
	}
}

// WithDomainCount sets how many top-level domains stage 1 asks for.
func WithDomainCount(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.domainCount = n
		}
	}
}
