// Package models defines core data structures for chunks, indexed records, search hits, and answers.
package models

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Chunk is a bounded, sentence-aligned segment of document text with position metadata.
type Chunk struct {
	Text           string `json:"text"`
	SourceFilename string `json:"source_filename"`
	PageNumber     int    `json:"page_number"`
	ChunkSequence  int    `json:"chunk_sequence"`
	CharCount      int    `json:"char_count"`
	WordCount      int    `json:"word_count"`
}

// CitationLabel returns "{filename-without-extension} | page {page} | chunk #{sequence}".
func (c Chunk) CitationLabel() string {
	base := strings.TrimSuffix(c.SourceFilename, filepath.Ext(c.SourceFilename))
	return base + " | page " + strconv.Itoa(c.PageNumber) + " | chunk #" + strconv.Itoa(c.ChunkSequence)
}

// IndexedRecord is a chunk plus its embedding, keyed by a generated id. Immutable once stored.
type IndexedRecord struct {
	ID     string
	Chunk  Chunk
	Vector []float32
}
