package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain returns content as page 1. Invalid UTF-8 is replaced.
func extractPlain(content []byte) ([]Page, error) {
	text := string(content)
	if !utf8.Valid(content) {
		text = strings.ToValidUTF8(text, "�")
	}
	return singlePage(text), nil
}
