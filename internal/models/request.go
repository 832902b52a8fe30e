package models

import (
	"fmt"
	"strings"
)

// AskRequest is a question against the indexed corpus.
type AskRequest struct {
	Query          string `json:"query"`
	FilenameFilter string `json:"filename_filter,omitempty"`
	TopK           int    `json:"top_k,omitempty"`
}

// Validate ensures the request has a query and clamps TopK to [1, maxTopK].
// A zero TopK is replaced by defaultTopK.
func (r *AskRequest) Validate(defaultTopK, maxTopK int) error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if r.TopK <= 0 {
		r.TopK = defaultTopK
	}
	if maxTopK > 0 && r.TopK > maxTopK {
		r.TopK = maxTopK
	}
	return nil
}

// AskResponse is the result of answering a question.
type AskResponse struct {
	Answer       string   `json:"answer"`
	Citations    []string `json:"citations"`
	Refused      bool     `json:"refused"`
	Confidence   float64  `json:"confidence"`
	HitCount     int      `json:"hit_count"`
	ResponseTime int64    `json:"response_time_ms"`
	Query        string   `json:"query"`
}

// IngestResult summarizes a successfully ingested document.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks_count"`
}
