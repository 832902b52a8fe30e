// Package extract turns document files into page-numbered plain text.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when no extractor understands the content.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Page is the text of one page, sheet or slide. Number starts at 1.
type Page struct {
	Number int
	Text   string
}

// Extractor extracts page text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// SupportedExtensions lists the extensions with a dedicated extractor.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".odt", ".rtf", ".xlsx", ".pptx", ".odp", ".ods", ".md", ".txt", ".rst"}
}

// Extract reads the file at path and returns its cleaned pages.
func (e *Extractor) Extract(path string) ([]Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ExtractBytes extracts pages from content based on ext (with leading dot).
// Every page is passed through CleanText and pages left empty are dropped,
// so a document with no text yields an empty slice and no error.
// Unknown extensions are tried as PDF before failing with ErrUnsupportedFormat.
func (e *Extractor) ExtractBytes(content []byte, ext string) ([]Page, error) {
	raw, err := extractRaw(content, strings.ToLower(ext))
	if err != nil {
		return nil, err
	}
	pages := make([]Page, 0, len(raw))
	for _, p := range raw {
		text := CleanText(p.Text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: p.Number, Text: text})
	}
	return pages, nil
}

func extractRaw(content []byte, ext string) ([]Page, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".odt", ".rtf":
		return extractWithCat(content)
	case ".xlsx":
		return extractExcel(content)
	case ".pptx":
		return extractPPTX(content)
	case ".odp":
		return extractODP(content)
	case ".ods":
		return extractODS(content)
	case ".md", ".markdown":
		return extractMarkdown(content)
	case ".txt", ".rst":
		return extractPlain(content)
	default:
		pages, err := extractPDF(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
		}
		return pages, nil
	}
}

// singlePage wraps text as page 1.
func singlePage(text string) []Page {
	return []Page{{Number: 1, Text: text}}
}
