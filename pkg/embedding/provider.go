package embedding

import "math"

// Dimension is the width of every stored vector. Provider output is padded
// or truncated to this before it touches the database.
const Dimension = 768

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

// FitDimension pads with zeros or truncates so every vector matches the
// column width regardless of which provider produced it.
func FitDimension(vec []float32) []float32 {
	if len(vec) == Dimension {
		return vec
	}
	out := make([]float32, Dimension)
	copy(out, vec)
	return out
}

// normalizeVector scales a vector to unit length. Cosine distance in
// pgvector assumes normalized vectors.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
