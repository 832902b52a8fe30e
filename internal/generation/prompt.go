package generation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// RefusalSentinel is the exact answer given when the context does not support one.
const RefusalSentinel = "Answer not found in the document."

const answerMarker = "ANSWER:"

const instructions = "You are a helpful assistant that answers questions based solely on the provided context.\n\n" +
	"INSTRUCTIONS:\n" +
	"1. Use only the information contained in the context below to answer the question.\n" +
	"2. If the answer cannot be found in the context, reply exactly with: '" + RefusalSentinel + "'\n" +
	"3. Be precise and detailed if the information is available.\n" +
	"4. When you provide an answer, cite the source by referring to its number in square brackets, e.g. [Source 1].\n\n"

var sourceTag = regexp.MustCompile(`\[Source \d+\]`)

// BuildPrompt numbers every hit as [Source i] (from 1) and appends the question.
func BuildPrompt(query string, rc models.RetrievalContext) string {
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("CONTEXT:\n")
	for i, hit := range rc {
		fmt.Fprintf(&b, "[Source %d]\n%s\n\n", i+1, strings.TrimSpace(hit.Chunk.Text))
	}
	b.WriteString("QUESTION:\n")
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString(answerMarker)
	return b.String()
}

// ExtractAnswer keeps the text after the last ANSWER: marker (all of raw when absent),
// drops a trailing stop marker, strips [Source N] tags and normalizes whitespace.
func ExtractAnswer(raw, stopMarker string) string {
	answer := raw
	if i := strings.LastIndex(answer, answerMarker); i >= 0 {
		answer = answer[i+len(answerMarker):]
	}
	answer = strings.TrimSpace(answer)
	if stopMarker != "" {
		answer = strings.TrimSpace(strings.TrimSuffix(answer, stopMarker))
	}
	answer = sourceTag.ReplaceAllString(answer, "")
	return utils.CollapseWhitespace(answer)
}

// IsRefusal reports whether an extracted answer is empty or starts with the
// sentinel, ignoring case and surrounding quotes.
func IsRefusal(answer string) bool {
	answer = strings.Trim(answer, `'" `)
	if answer == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(answer), strings.ToLower(RefusalSentinel))
}

// Citations returns one label per hit, deduplicated in first-seen order.
func Citations(rc models.RetrievalContext) []string {
	seen := make(map[string]struct{}, len(rc))
	out := make([]string, 0, len(rc))
	for _, hit := range rc {
		label := hit.Chunk.CitationLabel()
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
