package knowledge

import (
	"fmt"

	"ai-reportgen-be/internal/entity"

	"github.com/google/uuid"
)

type SufficiencyLevel string

const (
	LevelSufficient   SufficiencyLevel = "sufficient"
	LevelInsufficient SufficiencyLevel = "insufficient"
	LevelIrrelevant   SufficiencyLevel = "irrelevant"
)

// SearchHit is one retrieved chunk with its cosine similarity to the query.
type SearchHit struct {
	Chunk      *entity.Chunk
	Similarity float64
	DocumentId uuid.UUID
}

// SufficiencyResult classifies whether a set of hits can answer a query.
// Level and Confidence are always produced by the same classification pass.
type SufficiencyResult struct {
	Level             SufficiencyLevel
	Confidence        float64
	Coverage          float64
	Quality           float64
	Reason            string
	Hits              []SearchHit
	NeedsConfirmation bool
}

// Evaluator scores retrieved chunks against a query. It is a pure function
// of its inputs and the three thresholds; no hidden state.
type Evaluator struct {
	MinSimilarity float64
	MinCoverage   float64
	MinQuality    float64
}

func NewEvaluator(minSimilarity, minCoverage float64) *Evaluator {
	return &Evaluator{
		MinSimilarity: minSimilarity,
		MinCoverage:   minCoverage,
		MinQuality:    0.6,
	}
}

func (e *Evaluator) Evaluate(query string, hits []SearchHit) *SufficiencyResult {
	if len(hits) == 0 {
		return &SufficiencyResult{
			Level:             LevelIrrelevant,
			Confidence:        0.0,
			Coverage:          0.0,
			Quality:           0.0,
			Reason:            "no relevant content found",
			Hits:              nil,
			NeedsConfirmation: true,
		}
	}

	var sum, max float64
	for _, h := range hits {
		sum += h.Similarity
		if h.Similarity > max {
			max = h.Similarity
		}
	}
	avg := sum / float64(len(hits))

	coverage := e.coverage(query, hits, avg)
	quality := e.quality(hits, avg)

	// A single very strong hit is enough on its own; otherwise all three
	// thresholds must hold.
	isSufficient := max > 0.75 ||
		(avg >= e.MinSimilarity && coverage >= e.MinCoverage && quality >= e.MinQuality)

	confidence := clamp01(0.3*max + 0.3*avg + 0.2*coverage + 0.2*quality)

	var level SufficiencyLevel
	switch {
	case isSufficient:
		level = LevelSufficient
	case confidence >= 0.75:
		level = LevelSufficient
	case confidence >= 0.3:
		level = LevelInsufficient
	default:
		level = LevelIrrelevant
	}

	return &SufficiencyResult{
		Level:      level,
		Confidence: confidence,
		Coverage:   coverage,
		Quality:    quality,
		Reason: fmt.Sprintf("hits=%d avg_similarity=%.3f max_similarity=%.3f coverage=%.3f quality=%.3f",
			len(hits), avg, max, coverage, quality),
		Hits:              hits,
		NeedsConfirmation: level != LevelSufficient,
	}
}

// coverage blends keyword overlap with average similarity. Queries with no
// extractable keywords get a neutral 0.5 overlap.
func (e *Evaluator) coverage(query string, hits []SearchHit, avgSimilarity float64) float64 {
	queryKeywords := ExtractKeywords(query)
	if len(queryKeywords) == 0 {
		return clamp01(0.5)
	}

	var combined string
	for _, h := range hits {
		combined += h.Chunk.Content + " "
	}
	hitKeywords := ExtractKeywords(combined)

	overlap := 0
	for kw := range queryKeywords {
		if hitKeywords[kw] {
			overlap++
		}
	}
	ratio := float64(overlap) / float64(len(queryKeywords))

	return clamp01(0.6*ratio + 0.4*avgSimilarity)
}

func (e *Evaluator) quality(hits []SearchHit, avgSimilarity float64) float64 {
	distinctDocs := make(map[uuid.UUID]bool)
	totalLen := 0
	for _, h := range hits {
		distinctDocs[h.DocumentId] = true
		totalLen += len(h.Chunk.Content)
	}

	denom := len(hits)
	if denom > 3 {
		denom = 3
	}
	diversity := float64(len(distinctDocs)) / float64(denom)
	if diversity > 1.0 {
		diversity = 1.0
	}

	adequacy := float64(totalLen) / 1000.0
	if adequacy > 1.0 {
		adequacy = 1.0
	}

	return clamp01(0.4*avgSimilarity + 0.3*diversity + 0.3*adequacy)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
