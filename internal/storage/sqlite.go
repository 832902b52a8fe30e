package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// MemoryDSN keeps the ledger in process memory.
const MemoryDSN = ":memory:"

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates the ledger at dsn and initializes the schema.
// For a file path, parent directories are created if they do not exist.
func NewSQLiteStorage(dsn string) (*SQLiteStorage, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if dsn != MemoryDSN {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if dsn != MemoryDSN {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		pages INTEGER NOT NULL,
		chunks INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_content_hash ON documents(content_hash);

	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		page INTEGER NOT NULL,
		sequence INTEGER NOT NULL,
		char_count INTEGER NOT NULL,
		word_count INTEGER NOT NULL,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id, sequence);
	`
	_, err := db.Exec(schema)
	return err
}

// BeginDocument inserts doc in a transaction that stays open until the
// returned PendingDocument is committed or rolled back. The ledger allows one
// connection, so other calls wait for it.
func (s *SQLiteStorage) BeginDocument(ctx context.Context, doc *models.Document) (PendingDocument, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, filename, content_hash, pages, chunks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.ContentHash, doc.Pages, doc.Chunks, doc.CreatedAt,
	); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return &sqlitePending{ctx: ctx, tx: tx, docID: doc.ID}, nil
}

// RecordDocument inserts doc and its chunk entries in a transaction.
func (s *SQLiteStorage) RecordDocument(ctx context.Context, doc *models.Document, chunks []models.ChunkEntry) error {
	pending, err := s.BeginDocument(ctx, doc)
	if err != nil {
		return err
	}
	defer pending.Rollback()
	return pending.Commit(chunks)
}

type sqlitePending struct {
	ctx   context.Context
	tx    *sql.Tx
	docID string
	done  bool
}

func (p *sqlitePending) Commit(chunks []models.ChunkEntry) error {
	if p.done {
		return sql.ErrTxDone
	}
	p.done = true
	stmt, err := p.tx.PrepareContext(p.ctx,
		`INSERT INTO chunks (id, document_id, page, sequence, char_count, word_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		_ = p.tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(p.ctx, c.ID, p.docID, c.Page, c.Sequence, c.CharCount, c.WordCount); err != nil {
			_ = p.tx.Rollback()
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}
	return p.tx.Commit()
}

func (p *sqlitePending) Rollback() error {
	if p.done {
		return nil
	}
	p.done = true
	return p.tx.Rollback()
}

const documentColumns = `id, filename, content_hash, pages, chunks, created_at`

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	var doc models.Document
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.ContentHash, &doc.Pages, &doc.Chunks, &doc.CreatedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocument returns a document by ID.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, err
}

// FindByContentHash returns the document ingested with hash.
func (s *SQLiteStorage) FindByContentHash(ctx context.Context, hash string) (*models.Document, error) {
	doc, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE content_hash = ?`, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("content %s: %w", hash, ErrNotFound)
	}
	return doc, err
}

// ListDocuments returns documents, oldest first, with offset and limit.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at, rowid LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetChunksByDocumentID returns all chunk entries of a document ordered by sequence.
func (s *SQLiteStorage) GetChunksByDocumentID(ctx context.Context, docID string) ([]models.ChunkEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, page, sequence, char_count, word_count
		 FROM chunks WHERE document_id = ? ORDER BY sequence, rowid`,
		docID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []models.ChunkEntry
	for rows.Next() {
		var c models.ChunkEntry
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Page, &c.Sequence, &c.CharCount, &c.WordCount); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
