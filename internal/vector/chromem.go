package vector

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

const chromemCollection = "chunks"

// Metadata keys stored with every chromem document.
const (
	metaFilename  = "source_filename"
	metaPage      = "page_number"
	metaSequence  = "chunk_sequence"
	metaCharCount = "char_count"
	metaWordCount = "word_count"
	metaInsertSeq = "insert_seq"
)

var errNoEmbeddingFunc = errors.New("chromem index stores precomputed vectors only")

// ChromemIndex stores records in a chromem-go collection. Vectors are
// normalized by chromem, so its similarity equals cosine similarity.
type ChromemIndex struct {
	dimensions int
	db         *chromem.DB
	coll       *chromem.Collection
	opts       options
	nextSeq    int
	closed     bool
	mu         sync.RWMutex
}

// NewChromemIndex opens an in-memory chromem database, or a persistent one when WithPersistDir is given.
func NewChromemIndex(dimensions int, opts ...Option) (*ChromemIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	o := buildOptions(opts)
	var (
		db  *chromem.DB
		err error
	)
	if o.persistDir != "" {
		db, err = chromem.NewPersistentDB(o.persistDir, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}
	noEmbed := func(context.Context, string) ([]float32, error) { return nil, errNoEmbeddingFunc }
	coll, err := db.GetOrCreateCollection(chromemCollection, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("open chromem collection: %w", err)
	}
	return &ChromemIndex{
		dimensions: dimensions,
		db:         db,
		coll:       coll,
		opts:       o,
		nextSeq:    coll.Count(),
	}, nil
}

// Type returns the index type identifier.
func (c *ChromemIndex) Type() string {
	return string(IndexTypeChromem)
}

// Add validates the whole call, then writes documents batch by batch.
func (c *ChromemIndex) Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) ([]string, error) {
	if err := validateAdd(chunks, vectors, c.dimensions); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrIndexUnavailable
	}

	ids := make([]string, 0, len(chunks))
	for start := 0; start < len(chunks); start += c.opts.batchSize {
		end := min(start+c.opts.batchSize, len(chunks))
		docs := make([]chromem.Document, 0, end-start)
		for i := start; i < end; i++ {
			vec := make([]float32, c.dimensions)
			copy(vec, vectors[i])
			id := uuid.NewString()
			docs = append(docs, chromem.Document{
				ID:        id,
				Content:   chunks[i].Text,
				Metadata:  chunkMetadata(chunks[i], c.nextSeq+i),
				Embedding: vec,
			})
			ids = append(ids, id)
		}
		if err := c.coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return nil, fmt.Errorf("add chromem documents: %w", err)
		}
		c.opts.logger.Debug("inserted batch", zap.Int("start", start), zap.Int("count", end-start))
	}
	c.nextSeq += len(chunks)
	return ids, nil
}

// Search asks chromem for every document passing the filename where clause,
// restores insertion order and re-ranks the full candidate list.
func (c *ChromemIndex) Search(ctx context.Context, query []float32, opts SearchOptions) ([]models.SearchHit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrIndexUnavailable
	}
	ok, err := validateQuery(query, c.dimensions)
	if err != nil {
		return nil, err
	}
	count := c.coll.Count()
	if !ok || opts.TopK <= 0 || count == 0 {
		return []models.SearchHit{}, nil
	}

	var where map[string]string
	if opts.FilenameFilter != "" {
		where = map[string]string{metaFilename: opts.FilenameFilter}
	}
	q := make([]float32, len(query))
	copy(q, query)
	// chromem clamps nResults to the number of filtered documents. Asking for
	// fewer would let its parallel top-n selection pick among ties at random.
	results, err := c.coll.QueryEmbedding(ctx, q, count, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query chromem: %w", err)
	}

	type seqHit struct {
		seq int
		hit models.SearchHit
	}
	ordered := make([]seqHit, 0, len(results))
	for _, r := range results {
		chunk, seq := chunkFromResult(r)
		ordered = append(ordered, seqHit{seq: seq, hit: models.SearchHit{
			ID:         r.ID,
			Chunk:      chunk,
			Similarity: float64(r.Similarity),
		}})
	}
	// Restore insertion order so Rerank breaks ties the same way as MemoryIndex.
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })
	candidates := make([]models.SearchHit, len(ordered))
	for i, o := range ordered {
		candidates[i] = o.hit
	}
	return Rerank(candidates, opts.TopK, c.opts.rerank), nil
}

// Size returns the number of stored documents.
func (c *ChromemIndex) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0
	}
	return c.coll.Count()
}

// Close marks the index closed; persisted data stays on disk.
func (c *ChromemIndex) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func chunkMetadata(ch models.Chunk, seq int) map[string]string {
	return map[string]string{
		metaFilename:  ch.SourceFilename,
		metaPage:      strconv.Itoa(ch.PageNumber),
		metaSequence:  strconv.Itoa(ch.ChunkSequence),
		metaCharCount: strconv.Itoa(ch.CharCount),
		metaWordCount: strconv.Itoa(ch.WordCount),
		metaInsertSeq: strconv.Itoa(seq),
	}
}

func chunkFromResult(r chromem.Result) (models.Chunk, int) {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(r.Metadata[key])
		return n
	}
	return models.Chunk{
		Text:           r.Content,
		SourceFilename: r.Metadata[metaFilename],
		PageNumber:     atoi(metaPage),
		ChunkSequence:  atoi(metaSequence),
		CharCount:      atoi(metaCharCount),
		WordCount:      atoi(metaWordCount),
	}, atoi(metaInsertSeq)
}
