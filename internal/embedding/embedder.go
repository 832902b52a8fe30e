// Package embedding turns text into dense vectors through pluggable providers.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmbedding is returned when a provider cannot embed its input.
var ErrEmbedding = errors.New("embedding failed")

// Embedder produces vector embeddings for text. All vectors from one
// embedder share Dimensions().
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// validateTexts rejects empty input before any provider call.
func validateTexts(texts []string) error {
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: text %d is empty", ErrEmbedding, i)
		}
	}
	return nil
}

// checkVectors verifies a provider returned one vector of the expected size per input.
func checkVectors(vectors [][]float32, n, dims int) error {
	if len(vectors) != n {
		return fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbedding, len(vectors), n)
	}
	for i, v := range vectors {
		if dims > 0 && len(v) != dims {
			return fmt.Errorf("%w: vector %d has dimension %d, want %d", ErrEmbedding, i, len(v), dims)
		}
	}
	return nil
}
