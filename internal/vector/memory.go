package vector

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// MemoryIndex keeps records in insertion order and scans them linearly.
type MemoryIndex struct {
	dimensions int
	records    []models.IndexedRecord
	opts       options
	closed     bool
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory index for vectors of the given dimension.
func NewMemoryIndex(dimensions int, opts ...Option) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		records:    make([]models.IndexedRecord, 0),
		opts:       buildOptions(opts),
	}, nil
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return string(IndexTypeMemory)
}

// Add validates the whole call, then appends records batch by batch under one write lock.
func (m *MemoryIndex) Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) ([]string, error) {
	if err := validateAdd(chunks, vectors, m.dimensions); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrIndexUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(chunks))
	for start := 0; start < len(chunks); start += m.opts.batchSize {
		end := min(start+m.opts.batchSize, len(chunks))
		for i := start; i < end; i++ {
			vec := make([]float32, m.dimensions)
			copy(vec, vectors[i])
			id := uuid.NewString()
			m.records = append(m.records, models.IndexedRecord{ID: id, Chunk: chunks[i], Vector: vec})
			ids = append(ids, id)
		}
		m.opts.logger.Debug("inserted batch", zap.Int("start", start), zap.Int("count", end-start))
	}
	return ids, nil
}

// Search scores every record (optionally filtered by filename) and re-ranks the result.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, opts SearchOptions) ([]models.SearchHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrIndexUnavailable
	}
	ok, err := validateQuery(query, m.dimensions)
	if err != nil {
		return nil, err
	}
	if !ok || opts.TopK <= 0 || len(m.records) == 0 {
		return []models.SearchHit{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := make([]models.SearchHit, 0, len(m.records))
	for _, r := range m.records {
		if opts.FilenameFilter != "" && r.Chunk.SourceFilename != opts.FilenameFilter {
			continue
		}
		candidates = append(candidates, models.SearchHit{
			ID:         r.ID,
			Chunk:      r.Chunk,
			Similarity: utils.Cosine(query, r.Vector),
		})
	}
	return Rerank(candidates, opts.TopK, m.opts.rerank), nil
}

// Size returns the number of records.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close releases the records; later calls return ErrIndexUnavailable.
func (m *MemoryIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.records = nil
	return nil
}
