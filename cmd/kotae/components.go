package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/chunker"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/rag"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
)

// Components holds initialized services.
type Components struct {
	Storage     storage.Storage
	Embedder    embedding.Embedder
	VectorIndex vector.Index
	Pipeline    *rag.Pipeline
}

// Close releases every component that was opened.
func (c *Components) Close() {
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (_ *Components, err error) {
	c := &Components{}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	ledger, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}
	c.Storage = ledger

	if c.Embedder, err = embedding.New(cfg.Embedding, embedding.WithLogger(logger)); err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	logger.Info("embedder initialized",
		zap.String("provider", cfg.Embedding.Provider),
		zap.Int("dimensions", c.Embedder.Dimensions()))

	vecOpts := []vector.Option{
		vector.WithInsertBatchSize(cfg.Retrieval.InsertBatchSize),
		vector.WithRerankConfig(vector.RerankConfig{
			SimilarityFloor: cfg.Retrieval.Floor(),
			LengthCap:       cfg.Retrieval.LengthCap(),
			WordCountCap:    cfg.Retrieval.WordCountCap(),
		}),
		vector.WithLogger(logger),
	}
	if cfg.Storage.ChromemPath != "" {
		vecOpts = append(vecOpts, vector.WithPersistDir(cfg.Storage.ChromemPath))
	}
	if c.VectorIndex, err = vector.NewIndex(cfg.Storage.VectorIndexType, c.Embedder.Dimensions(), vecOpts...); err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	logger.Info("vector index initialized",
		zap.String("type", cfg.Storage.VectorIndexType),
		zap.Int("size", c.VectorIndex.Size()))

	provider, err := generation.NewProvider(cfg.Generation, generation.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation provider: %w", err)
	}
	gen := generation.NewGenerator(provider,
		generation.WithStopMarker(cfg.Generation.StopMarker),
		generation.WithLogger(logger))

	ch, err := chunker.New(cfg.Chunking.MaxChunkSize, cfg.Chunking.Overlap())
	if err != nil {
		return nil, err
	}

	c.Pipeline = rag.New(ch, c.Embedder, c.VectorIndex, gen,
		rag.WithLedger(c.Storage),
		rag.WithEmbeddingBatchSize(cfg.Embedding.BatchSize),
		rag.WithDefaultTopK(cfg.Retrieval.TopK),
		rag.WithLogger(logger),
	)
	return c, nil
}
