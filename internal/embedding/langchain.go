package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
)

// LangChainEmbedder adapts any langchaingo embeddings.Embedder.
type LangChainEmbedder struct {
	inner      embeddings.Embedder
	dimensions int
}

// NewLangChainEmbedder wraps inner; vectors must have the given dimensions.
func NewLangChainEmbedder(inner embeddings.Embedder, dimensions int) *LangChainEmbedder {
	return &LangChainEmbedder{inner: inner, dimensions: dimensions}
}

// Embed embeds one text as a query.
func (e *LangChainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := validateTexts([]string{text}); err != nil {
		return nil, err
	}
	v, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if err := checkVectors([][]float32{v}, 1, e.dimensions); err != nil {
		return nil, err
	}
	return v, nil
}

// EmbedBatch embeds texts as documents in one call.
func (e *LangChainEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}
	vectors, err := e.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if err := checkVectors(vectors, len(texts), e.dimensions); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Dimensions returns the configured embedding dimension.
func (e *LangChainEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *LangChainEmbedder) Close() error {
	return nil
}
