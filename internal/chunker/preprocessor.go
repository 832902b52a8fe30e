package chunker

import (
	"strings"

	"github.com/hyperjump/kotae/pkg/utils"
)

// Preprocess normalizes text for chunking (trim, collapse whitespace).
func Preprocess(text string) string {
	return utils.CollapseWhitespace(text)
}

// Sentence is one fragment of normalized text ending in terminal punctuation (or end of text).
// Sep is the text that separated it from the previous sentence: " " or "".
type Sentence struct {
	Text string
	Sep  string
}

func isTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

// SplitSentences splits normalized text on runs of '.', '!' and '?', keeping the
// punctuation with the sentence it ends. Fragments made only of punctuation are
// folded into the previous sentence so no text is lost.
func SplitSentences(text string) []Sentence {
	var out []Sentence
	start := 0
	flush := func(end int) {
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		start = end
		if trimmed == "" {
			return
		}
		sep := ""
		if strings.HasPrefix(raw, " ") {
			sep = " "
		}
		if len(out) > 0 && strings.Trim(trimmed, ".!?") == "" {
			last := &out[len(out)-1]
			last.Text += sep + trimmed
			return
		}
		if len(out) == 0 {
			sep = ""
		}
		out = append(out, Sentence{Text: trimmed, Sep: sep})
	}
	for i := 0; i < len(text); i++ {
		if !isTerminal(text[i]) {
			continue
		}
		j := i
		for j < len(text) && isTerminal(text[j]) {
			j++
		}
		flush(j)
		i = j - 1
	}
	if start < len(text) {
		flush(len(text))
	}
	return out
}
