// Package storage keeps the ingestion ledger: which documents were ingested
// and which chunks each produced.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrNotFound is returned when a document is not in the ledger.
var ErrNotFound = errors.New("not found")

// PendingDocument is a document row written inside an open transaction.
// Nothing is visible to other readers until Commit.
type PendingDocument interface {
	// Commit stores the chunk entries and commits the transaction.
	Commit(chunks []models.ChunkEntry) error
	// Rollback discards the document. It is a no-op after Commit.
	Rollback() error
}

// Storage defines ledger operations.
type Storage interface {
	// BeginDocument inserts doc in a new transaction and returns it pending.
	BeginDocument(ctx context.Context, doc *models.Document) (PendingDocument, error)
	// RecordDocument stores doc and its chunk entries in one transaction.
	RecordDocument(ctx context.Context, doc *models.Document, chunks []models.ChunkEntry) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	FindByContentHash(ctx context.Context, hash string) (*models.Document, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)
	GetChunksByDocumentID(ctx context.Context, docID string) ([]models.ChunkEntry, error)

	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
