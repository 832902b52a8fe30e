package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func newTestStorage(t *testing.T, dsn string) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleDocument(id, hash string) (*models.Document, []models.ChunkEntry) {
	doc := &models.Document{ID: id, Filename: id + ".pdf", ContentHash: hash, Pages: 2, Chunks: 3}
	chunks := []models.ChunkEntry{
		{ID: id + "-c2", Page: 2, Sequence: 2, CharCount: 30, WordCount: 6},
		{ID: id + "-c0", Page: 1, Sequence: 0, CharCount: 10, WordCount: 2},
		{ID: id + "-c1", Page: 1, Sequence: 1, CharCount: 20, WordCount: 4},
	}
	return doc, chunks
}

func TestSQLiteStorage_RecordAndRead(t *testing.T) {
	store := newTestStorage(t, MemoryDSN)
	ctx := context.Background()

	doc, chunks := sampleDocument("doc1", "sha256:aa")
	if err := store.RecordDocument(ctx, doc, chunks); err != nil {
		t.Fatal(err)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Filename != "doc1.pdf" || got.Pages != 2 || got.Chunks != 3 {
		t.Errorf("got %+v", got)
	}

	byHash, err := store.FindByContentHash(ctx, "sha256:aa")
	if err != nil {
		t.Fatal(err)
	}
	if byHash.ID != "doc1" {
		t.Errorf("FindByContentHash returned %s", byHash.ID)
	}

	entries, err := store.GetChunksByDocumentID(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Sequence != i || e.DocumentID != "doc1" {
			t.Errorf("entry %d = %+v", i, e)
		}
	}

	nd, _ := store.CountDocuments(ctx)
	nc, _ := store.CountChunks(ctx)
	if nd != 1 || nc != 3 {
		t.Errorf("counts = %d docs, %d chunks", nd, nc)
	}
}

func TestSQLiteStorage_NotFound(t *testing.T) {
	store := newTestStorage(t, MemoryDSN)
	ctx := context.Background()
	if _, err := store.GetDocument(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDocument error = %v", err)
	}
	if _, err := store.FindByContentHash(ctx, "sha256:none"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByContentHash error = %v", err)
	}
}

func TestSQLiteStorage_DuplicateHashRollsBack(t *testing.T) {
	store := newTestStorage(t, MemoryDSN)
	ctx := context.Background()

	doc, chunks := sampleDocument("doc1", "sha256:same")
	if err := store.RecordDocument(ctx, doc, chunks); err != nil {
		t.Fatal(err)
	}
	dup, dupChunks := sampleDocument("doc2", "sha256:same")
	if err := store.RecordDocument(ctx, dup, dupChunks); err == nil {
		t.Fatal("expected unique content hash violation")
	}
	nc, _ := store.CountChunks(ctx)
	if nc != 3 {
		t.Errorf("failed record must not leave chunks behind, got %d", nc)
	}
}

func TestSQLiteStorage_List(t *testing.T) {
	store := newTestStorage(t, MemoryDSN)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		doc, chunks := sampleDocument(id, "sha256:"+id)
		if err := store.RecordDocument(ctx, doc, chunks); err != nil {
			t.Fatal(err)
		}
	}
	list, err := store.ListDocuments(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "c" {
		t.Errorf("unexpected page: %+v", list)
	}
}

func TestSQLiteStorage_FilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	doc, chunks := sampleDocument("doc1", "sha256:aa")
	if err := store.RecordDocument(context.Background(), doc, chunks); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened := newTestStorage(t, path)
	n, err := reopened.CountDocuments(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 document after reopen, got %d", n)
	}
}

func TestSQLiteStorage_BeginDocument(t *testing.T) {
	store := newTestStorage(t, MemoryDSN)
	ctx := context.Background()

	doc, chunks := sampleDocument("doc1", "sha256:aa")
	pending, err := store.BeginDocument(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := pending.Rollback(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.FindByContentHash(ctx, "sha256:aa"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rolled back document is visible: %v", err)
	}

	pending, err = store.BeginDocument(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := pending.Commit(chunks); err != nil {
		t.Fatal(err)
	}
	if err := pending.Rollback(); err != nil {
		t.Errorf("Rollback after Commit should be a no-op: %v", err)
	}
	entries, err := store.GetChunksByDocumentID(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d chunk entries, want 3", len(entries))
	}

	dup, _ := sampleDocument("doc2", "sha256:aa")
	if _, err := store.BeginDocument(ctx, dup); err == nil {
		t.Error("second document with the same hash should fail")
	}
	if n, _ := store.CountDocuments(ctx); n != 1 {
		t.Errorf("CountDocuments = %d, want 1", n)
	}
}
