package models

// SearchHit is a single retrieval result.
// Similarity is the raw cosine score; Score is the re-ranked score used for ordering.
type SearchHit struct {
	ID         string  `json:"id"`
	Chunk      Chunk   `json:"chunk"`
	Similarity float64 `json:"similarity"`
	Score      float64 `json:"score"`
}

// RetrievalContext is an ordered sequence of hits, most relevant first.
type RetrievalContext []SearchHit

// Answer is the grounded answer produced for a query.
type Answer struct {
	Text      string   `json:"answer"`
	Citations []string `json:"citations"`
	// Refused is true when Text is the refusal sentinel.
	Refused bool `json:"refused"`
}
