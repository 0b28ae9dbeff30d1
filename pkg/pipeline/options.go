package pipeline

import (
	"go.uber.org/zap"

	"github.com/askiada/go-resample-pipeline/pkg/pipeline/memory"
	"github.com/askiada/go-resample-pipeline/pkg/pipeline/model"
)

type Option func(p *Pipeline)

// WithMemory caches the fitted steps in mem. A nil memory disables caching.
func WithMemory(mem memory.Memory) Option {
	return func(p *Pipeline) {
		p.setMemory(mem)
	}
}

// WithCache shares cache between pipelines, so that concurrent fits compute each step once.
func WithCache(cache *memory.Cache) Option {
	return func(p *Pipeline) {
		p.cache = cache
	}
}

// WithVerbose logs the time elapsed while fitting each step.
func WithVerbose(verbose bool) Option {
	return func(p *Pipeline) {
		p.verbose = verbose
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithOptions registers pipeline options such as measures and drawers.
func WithOptions(opts ...model.PipelineOption) Option {
	return func(p *Pipeline) {
		p.opts = append(p.opts, opts...)
	}
}
