package vector

import "go.uber.org/zap"

type options struct {
	batchSize  int
	rerank     RerankConfig
	persistDir string
	logger     *zap.Logger
}

// Option configures an index.
type Option func(*options)

// WithInsertBatchSize sets how many records are written per batch.
func WithInsertBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithRerankConfig overrides the re-ranking heuristics.
func WithRerankConfig(cfg RerankConfig) Option {
	return func(o *options) {
		o.rerank = cfg
	}
}

// WithPersistDir makes the chromem index persist to dir. Ignored by the memory index.
func WithPersistDir(dir string) Option {
	return func(o *options) {
		o.persistDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{batchSize: DefaultInsertBatchSize, rerank: DefaultRerankConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.batchSize <= 0 {
		o.batchSize = DefaultInsertBatchSize
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
