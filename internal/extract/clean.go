package extract

import (
	"regexp"
	"strings"

	"github.com/hyperjump/kotae/pkg/utils"
)

var camelJoin = regexp.MustCompile(`([a-z])([A-Z])`)

// CleanText normalizes extracted text: whitespace runs become one space,
// words glued by extraction ("endStart") are split, and non-ASCII bytes are dropped.
func CleanText(text string) string {
	text = utils.CollapseWhitespace(text)
	text = camelJoin.ReplaceAllString(text, "$1 $2")
	text = strings.Map(func(r rune) rune {
		if r < 127 {
			return r
		}
		return -1
	}, text)
	return utils.CollapseWhitespace(text)
}
