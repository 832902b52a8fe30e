package extract

import (
	"fmt"

	"github.com/lu4p/cat"
)

// extractWithCat handles ODT and RTF through lu4p/cat, which sniffs the
// format from the content itself.
func extractWithCat(content []byte) ([]Page, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return nil, fmt.Errorf("extract document: %w", err)
	}
	return singlePage(text), nil
}
