package models

import "time"

// Document is a ledger entry for one ingested file.
type Document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	Pages       int       `json:"pages"`
	Chunks      int       `json:"chunks"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChunkEntry records where an indexed chunk came from. The id matches the
// vector index record id.
type ChunkEntry struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"`
	Sequence   int    `json:"sequence"`
	CharCount  int    `json:"char_count"`
	WordCount  int    `json:"word_count"`
}
