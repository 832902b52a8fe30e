// Package vector stores chunk embeddings and answers filtered similarity queries.
package vector

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/kotae/internal/models"
)

var (
	// ErrIndexUnavailable is returned by every operation on a closed index.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrInvalidInput is returned when chunks, vectors or a query do not fit the index.
	ErrInvalidInput = errors.New("invalid vector input")
)

// DefaultInsertBatchSize is the number of records written per insert batch.
const DefaultInsertBatchSize = 100

// SearchOptions controls a single search.
type SearchOptions struct {
	// TopK is the maximum number of hits returned.
	TopK int
	// FilenameFilter, when non-empty, restricts candidates to chunks whose
	// SourceFilename equals it exactly.
	FilenameFilter string
}

// Index stores chunks with their vectors. Implementations allow one writer
// and many concurrent readers.
type Index interface {
	// Add stores every chunk with its vector and returns the generated ids in
	// input order. Invalid input rejects the whole call before anything is stored.
	Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) ([]string, error)
	// Search returns at most opts.TopK re-ranked hits, never nil.
	Search(ctx context.Context, query []float32, opts SearchOptions) ([]models.SearchHit, error)
	Size() int
	Close() error
}

// validateAdd checks lengths and dimensions for an Add call.
func validateAdd(chunks []models.Chunk, vectors [][]float32, dimensions int) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors", ErrInvalidInput, len(chunks), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != dimensions {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d", ErrInvalidInput, i, len(v), dimensions)
		}
	}
	return nil
}

// validateQuery checks the query dimension and reports whether the query can match anything.
func validateQuery(query []float32, dimensions int) (bool, error) {
	if len(query) != dimensions {
		return false, fmt.Errorf("%w: query dimension %d, expected %d", ErrInvalidInput, len(query), dimensions)
	}
	for _, v := range query {
		if v != 0 {
			return true, nil
		}
	}
	return false, nil
}
