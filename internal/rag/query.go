package rag

import "strings"

var questionStarters = []string{"what", "how", "when", "where", "why", "which", "who"}

// PreprocessQuery lower-cases and trims a query for embedding. A query that
// does not open with a question word gets one inferred from its topic.
func PreprocessQuery(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, s := range questionStarters {
		if strings.HasPrefix(q, s) {
			return q
		}
	}
	switch {
	case strings.Contains(q, "policy") || strings.Contains(q, "rule"):
		return "what is the " + q
	case strings.Contains(q, "time") || strings.Contains(q, "duration"):
		return "how long " + q
	case strings.Contains(q, "contact") || strings.Contains(q, "reach"):
		return "how to " + q
	}
	return q
}

// Confidence scores an answer: 0 without hits, 0.5 for a refusal, otherwise
// growing with the answer's word count up to 0.9.
func Confidence(answerWords, hits int, refused bool) float64 {
	if hits == 0 {
		return 0
	}
	if refused {
		return 0.5
	}
	return min(0.9, 0.5+float64(answerWords)/100)
}
