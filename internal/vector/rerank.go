package vector

import (
	"sort"

	"github.com/hyperjump/kotae/internal/models"
)

// RerankConfig holds the tunable re-ranking heuristics.
type RerankConfig struct {
	// SimilarityFloor drops candidates with a lower cosine similarity.
	SimilarityFloor float64
	// LengthCap bounds the bonus of charCount/1000.
	LengthCap float64
	// WordCountCap bounds the bonus of wordCount/100.
	WordCountCap float64
}

// DefaultRerankConfig returns floor 0.3, length cap 0.1 and word-count cap 0.05.
func DefaultRerankConfig() RerankConfig {
	return RerankConfig{SimilarityFloor: 0.3, LengthCap: 0.1, WordCountCap: 0.05}
}

// AdjustedScore is similarity plus the capped length and word-count bonuses.
func (c RerankConfig) AdjustedScore(similarity float64, chunk models.Chunk) float64 {
	return similarity +
		min(float64(chunk.CharCount)/1000, c.LengthCap) +
		min(float64(chunk.WordCount)/100, c.WordCountCap)
}

// Rerank applies the retrieval policy to candidates given in insertion order:
// drop those below the floor, keep the 2*topK most similar, score them, and
// return the topK best. Both sorts are stable, so ties keep insertion order.
func Rerank(candidates []models.SearchHit, topK int, cfg RerankConfig) []models.SearchHit {
	if topK <= 0 {
		return []models.SearchHit{}
	}
	kept := make([]models.SearchHit, 0, len(candidates))
	for _, c := range candidates {
		if c.Similarity >= cfg.SimilarityFloor {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Similarity > kept[j].Similarity })
	if len(kept) > 2*topK {
		kept = kept[:2*topK]
	}
	for i := range kept {
		kept[i].Score = cfg.AdjustedScore(kept[i].Similarity, kept[i].Chunk)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if len(kept) > topK {
		kept = kept[:topK]
	}
	return kept
}
