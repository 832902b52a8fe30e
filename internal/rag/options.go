package rag

import (
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/storage"
)

const (
	// DefaultEmbeddingBatchSize is the number of chunk texts embedded per call.
	DefaultEmbeddingBatchSize = 32
	// DefaultTopK is used when a request leaves top_k unset.
	DefaultTopK = 5
	// MaxTopK caps the number of hits a request may ask for.
	MaxTopK = 50
)

type options struct {
	batchSize int
	topK      int
	ledger    storage.Storage
	logger    *zap.Logger
}

// Option configures a Pipeline.
type Option func(*options)

// WithEmbeddingBatchSize sets how many chunk texts are embedded per call.
func WithEmbeddingBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithDefaultTopK sets the hit count used when a request does not set one.
func WithDefaultTopK(k int) Option {
	return func(o *options) {
		o.topK = k
	}
}

// WithLedger records ingested documents and rejects duplicate content.
func WithLedger(s storage.Storage) Option {
	return func(o *options) {
		o.ledger = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.batchSize <= 0 {
		o.batchSize = DefaultEmbeddingBatchSize
	}
	if o.topK <= 0 {
		o.topK = DefaultTopK
	}
	if o.topK > MaxTopK {
		o.topK = MaxTopK
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
