package embedding

import (
	"crypto/md5"
	"encoding/binary"
	"strings"
)

// FallbackProvider produces deterministic embeddings without any external
// service. Overlapping character trigrams of the lowercased text are hashed
// into a fixed number of buckets and the resulting count vector is
// normalized to unit length. The same text always yields the same vector,
// which keeps retrieval and tests reproducible when no model is reachable.
type FallbackProvider struct{}

func NewFallbackProvider() EmbeddingProvider {
	return &FallbackProvider{}
}

func (p *FallbackProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: HashEmbedding(text),
		},
	}, nil
}

// HashEmbedding is the pure core of the fallback provider. Exported so the
// evaluator tests can build vectors without going through a provider.
func HashEmbedding(text string) []float32 {
	vec := make([]float32, Dimension)

	lowered := strings.ToLower(text)
	runes := []rune(lowered)
	if len(runes) < 3 {
		if len(runes) > 0 {
			vec[trigramBucket(string(runes))]++
		}
		return normalizeVector(vec)
	}

	for i := 0; i+3 <= len(runes); i++ {
		vec[trigramBucket(string(runes[i:i+3]))]++
	}

	return normalizeVector(vec)
}

func trigramBucket(trigram string) int {
	sum := md5.Sum([]byte(trigram))
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(Dimension))
}
