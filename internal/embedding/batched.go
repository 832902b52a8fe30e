package embedding

import (
	"context"
	"fmt"
)

// EmbedInBatches embeds texts in consecutive batches of size and concatenates
// the results in input order. The first failing batch aborts the call.
func EmbedInBatches(ctx context.Context, e Embedder, texts []string, size int) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = len(texts)
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
		}
		end := min(start+size, len(texts))
		vectors, err := e.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch at %d: %w", start, err)
		}
		if err := checkVectors(vectors, end-start, e.Dimensions()); err != nil {
			return nil, fmt.Errorf("batch at %d: %w", start, err)
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// Batched is an Embedder whose EmbedBatch goes through EmbedInBatches.
type Batched struct {
	Embedder
	size int
}

// NewBatched wraps e so large batches are split into batches of size.
func NewBatched(e Embedder, size int) *Batched {
	return &Batched{Embedder: e, size: size}
}

// EmbedBatch embeds texts in ordered batches.
func (b *Batched) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return EmbedInBatches(ctx, b.Embedder, texts, b.size)
}
