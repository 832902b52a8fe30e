// Package chunker splits page text into bounded, overlapping, sentence-aligned chunks.
package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// ErrInvalidSize is returned by New when maxSize or overlap are out of range.
var ErrInvalidSize = errors.New("chunker: invalid size")

// Chunker accumulates sentences into chunks of at most maxSize bytes.
// A single sentence longer than maxSize is emitted whole.
type Chunker struct {
	maxSize int
	overlap int
}

// New creates a chunker. maxSize must be positive and overlap in [0, maxSize).
func New(maxSize, overlap int) (*Chunker, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: max size %d must be positive", ErrInvalidSize, maxSize)
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidSize, overlap, maxSize)
	}
	return &Chunker{maxSize: maxSize, overlap: overlap}, nil
}

// MaxSize returns the configured maximum chunk size.
func (c *Chunker) MaxSize() int { return c.maxSize }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits the text of one page. Sequence numbers start at 0 for every call.
// Empty or whitespace-only text returns nil.
func (c *Chunker) Chunk(text string, pageNumber int, filename string) []models.Chunk {
	normalized := Preprocess(text)
	if normalized == "" {
		return nil
	}
	var (
		chunks []models.Chunk
		buf    string
	)
	emit := func(s string) {
		s = strings.TrimSpace(s)
		chunks = append(chunks, models.Chunk{
			Text:           s,
			SourceFilename: filename,
			PageNumber:     pageNumber,
			ChunkSequence:  len(chunks),
			CharCount:      len(s),
			WordCount:      utils.WordCount(s),
		})
	}
	for _, sent := range SplitSentences(normalized) {
		switch {
		case buf != "" && len(buf)+len(sent.Text) > c.maxSize:
			emit(buf)
			closed := chunks[len(chunks)-1].Text
			buf = Tail(closed, c.overlap) + " " + sent.Text
		case buf == "":
			buf = sent.Text
		default:
			buf += sent.Sep + sent.Text
		}
	}
	if strings.TrimSpace(buf) != "" {
		emit(buf)
	}
	return chunks
}

// Tail returns the last n bytes of s, moved forward to a rune boundary.
// Returns s when len(s) <= n, and "" when n <= 0.
func Tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := len(s) - n
	for cut < len(s) && s[cut]&0xC0 == 0x80 {
		cut++
	}
	return s[cut:]
}
