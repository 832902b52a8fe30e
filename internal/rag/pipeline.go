// Package rag wires extraction, chunking, embedding, retrieval and generation
// into ingest and ask operations.
package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/chunker"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/fileid"
	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/pkg/utils"
)

var (
	// ErrContentExtraction is returned when a document yields no chunks.
	ErrContentExtraction = errors.New("no content extracted from document")
	// ErrDuplicateDocument is returned when identical content was already ingested.
	ErrDuplicateDocument = errors.New("document already ingested")
	// ErrInvalidQuery is returned for an empty question.
	ErrInvalidQuery = errors.New("invalid query")
)

// Pipeline ingests documents and answers questions against them.
type Pipeline struct {
	chunker   *chunker.Chunker
	embedder  embedding.Embedder
	index     vector.Index
	generator *generation.Generator
	extractor *extract.Extractor
	opts      options

	// ingestMu serializes ingestion so the duplicate check and the write agree.
	ingestMu sync.Mutex
}

// New creates a pipeline from its components.
func New(ch *chunker.Chunker, emb embedding.Embedder, idx vector.Index, gen *generation.Generator, opts ...Option) *Pipeline {
	return &Pipeline{
		chunker:   ch,
		embedder:  emb,
		index:     idx,
		generator: gen,
		extractor: extract.NewExtractor(),
		opts:      buildOptions(opts),
	}
}

// IngestFile extracts and ingests the file at path.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (models.IngestResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.IngestResult{}, fmt.Errorf("read file: %w", err)
	}
	return p.IngestBytes(ctx, filepath.Base(path), content)
}

// IngestBytes extracts content by the extension of filename and ingests it.
// With a ledger, content ingested before is rejected with ErrDuplicateDocument.
func (p *Pipeline) IngestBytes(ctx context.Context, filename string, content []byte) (models.IngestResult, error) {
	p.ingestMu.Lock()
	defer p.ingestMu.Unlock()

	hash := fileid.ContentID(content)
	if p.opts.ledger != nil {
		existing, err := p.opts.ledger.FindByContentHash(ctx, hash)
		switch {
		case err == nil:
			return models.IngestResult{}, fmt.Errorf("%w: %s matches %s", ErrDuplicateDocument, filename, existing.Filename)
		case !errors.Is(err, storage.ErrNotFound):
			return models.IngestResult{}, fmt.Errorf("check ledger: %w", err)
		}
	}

	pages, err := p.extractor.ExtractBytes(content, strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return models.IngestResult{}, fmt.Errorf("%w: %w", ErrContentExtraction, err)
	}
	batch, err := p.prepare(ctx, filename, pages)
	if err != nil {
		return models.IngestResult{}, err
	}
	result := batch.result()

	// A ledger failure before Add leaves the index untouched.
	var pending storage.PendingDocument
	if p.opts.ledger != nil {
		doc := &models.Document{
			ID:          result.DocumentID,
			Filename:    filename,
			ContentHash: hash,
			Pages:       result.Pages,
			Chunks:      result.Chunks,
		}
		pending, err = p.opts.ledger.BeginDocument(context.WithoutCancel(ctx), doc)
		if err != nil {
			p.opts.logger.Error("failed to record document in ledger",
				zap.String("filename", filename), zap.Error(err))
			return models.IngestResult{}, fmt.Errorf("record document: %w", err)
		}
		defer pending.Rollback()
	}

	ids, err := p.add(ctx, batch)
	if err != nil {
		return models.IngestResult{}, err
	}
	if pending != nil {
		if err := pending.Commit(chunkEntries(batch.chunks, ids)); err != nil {
			p.opts.logger.Warn("document indexed but missing from ledger",
				zap.String("filename", filename), zap.Error(err))
		}
	}
	return result, nil
}

// IngestPages chunks, embeds and indexes already extracted pages. Nothing is
// added to the index unless every chunk was embedded.
func (p *Pipeline) IngestPages(ctx context.Context, filename string, pages []extract.Page) (models.IngestResult, error) {
	p.ingestMu.Lock()
	defer p.ingestMu.Unlock()
	batch, err := p.prepare(ctx, filename, pages)
	if err != nil {
		return models.IngestResult{}, err
	}
	if _, err := p.add(ctx, batch); err != nil {
		return models.IngestResult{}, err
	}
	return batch.result(), nil
}

// ingestBatch is a document chunked and embedded but not yet indexed.
type ingestBatch struct {
	filename string
	pages    int
	chunks   []models.Chunk
	vectors  [][]float32
	start    time.Time
	docID    string
}

func (b ingestBatch) result() models.IngestResult {
	return models.IngestResult{
		DocumentID: b.docID,
		Filename:   b.filename,
		Pages:      b.pages,
		Chunks:     len(b.chunks),
	}
}

func (p *Pipeline) prepare(ctx context.Context, filename string, pages []extract.Page) (ingestBatch, error) {
	start := time.Now()
	var chunks []models.Chunk
	for _, page := range pages {
		chunks = append(chunks, p.chunker.Chunk(page.Text, page.Number, filename)...)
	}
	if len(chunks) == 0 {
		return ingestBatch{}, fmt.Errorf("%w: %s", ErrContentExtraction, filename)
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := embedding.EmbedInBatches(ctx, p.embedder, texts, p.opts.batchSize)
	if err != nil {
		return ingestBatch{}, fmt.Errorf("embed %s: %w", filename, err)
	}
	return ingestBatch{
		filename: filename,
		pages:    len(pages),
		chunks:   chunks,
		vectors:  vectors,
		start:    start,
		docID:    uuid.NewString(),
	}, nil
}

func (p *Pipeline) add(ctx context.Context, b ingestBatch) ([]string, error) {
	ids, err := p.index.Add(ctx, b.chunks, b.vectors)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", b.filename, err)
	}
	p.opts.logger.Info("document ingested",
		zap.String("filename", b.filename),
		zap.Int("pages", b.pages),
		zap.Int("chunks", len(b.chunks)),
		zap.Duration("elapsed", time.Since(b.start)),
	)
	return ids, nil
}

func chunkEntries(chunks []models.Chunk, ids []string) []models.ChunkEntry {
	entries := make([]models.ChunkEntry, len(chunks))
	for i, ch := range chunks {
		entries[i] = models.ChunkEntry{
			ID:        ids[i],
			Page:      ch.PageNumber,
			Sequence:  ch.ChunkSequence,
			CharCount: ch.CharCount,
			WordCount: ch.WordCount,
		}
	}
	return entries
}

// Ask answers req from the indexed chunks.
func (p *Pipeline) Ask(ctx context.Context, req models.AskRequest) (models.AskResponse, error) {
	start := time.Now()
	if err := req.Validate(p.opts.topK, MaxTopK); err != nil {
		return models.AskResponse{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	qvec, err := p.embedder.Embed(ctx, PreprocessQuery(req.Query))
	if err != nil {
		return models.AskResponse{}, fmt.Errorf("embed query: %w", err)
	}
	hits, err := p.index.Search(ctx, qvec, vector.SearchOptions{TopK: req.TopK, FilenameFilter: req.FilenameFilter})
	if err != nil {
		return models.AskResponse{}, fmt.Errorf("search: %w", err)
	}
	answer, err := p.generator.Generate(ctx, req.Query, hits)
	if err != nil {
		return models.AskResponse{}, err
	}

	resp := models.AskResponse{
		Answer:       answer.Text,
		Citations:    answer.Citations,
		Refused:      answer.Refused,
		Confidence:   Confidence(utils.WordCount(answer.Text), len(hits), answer.Refused),
		HitCount:     len(hits),
		ResponseTime: time.Since(start).Milliseconds(),
		Query:        req.Query,
	}
	p.opts.logger.Debug("question answered",
		zap.String("query", utils.Truncate(req.Query, 80)),
		zap.Int("hits", resp.HitCount),
		zap.Bool("refused", resp.Refused),
		zap.Int64("response_time_ms", resp.ResponseTime),
	)
	return resp, nil
}

// Status summarizes the pipeline state.
type Status struct {
	IndexedChunks int   `json:"indexed_chunks"`
	Documents     int64 `json:"documents"`
	LedgerChunks  int64 `json:"ledger_chunks"`
	Dimensions    int   `json:"dimensions"`
}

// Status reports index size and ledger counts.
func (p *Pipeline) Status(ctx context.Context) (Status, error) {
	s := Status{IndexedChunks: p.index.Size(), Dimensions: p.embedder.Dimensions()}
	if p.opts.ledger == nil {
		return s, nil
	}
	var err error
	if s.Documents, err = p.opts.ledger.CountDocuments(ctx); err != nil {
		return s, fmt.Errorf("count documents: %w", err)
	}
	if s.LedgerChunks, err = p.opts.ledger.CountChunks(ctx); err != nil {
		return s, fmt.Errorf("count chunks: %w", err)
	}
	return s, nil
}

// Documents lists ledger entries; nil without a ledger.
func (p *Pipeline) Documents(ctx context.Context, offset, limit int) ([]*models.Document, error) {
	if p.opts.ledger == nil {
		return nil, nil
	}
	return p.opts.ledger.ListDocuments(ctx, offset, limit)
}
