package embedding

import (
	"math"
	"testing"
)

func TestHashEmbeddingDeterministic(t *testing.T) {
	a := HashEmbedding("retrieval sufficiency evaluation")
	b := HashEmbedding("retrieval sufficiency evaluation")

	if len(a) != Dimension {
		t.Fatalf("len = %d, want %d", len(a), Dimension)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at index %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestHashEmbeddingCaseInsensitive(t *testing.T) {
	a := HashEmbedding("Quarterly Report")
	b := HashEmbedding("quarterly report")

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("case should not change the vector, differ at index %d", i)
		}
	}
}

func TestHashEmbeddingUnitLength(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"normal text", "the quick brown fox jumps over the lazy dog"},
		{"short text", "ab"},
		{"single rune", "x"},
		{"unicode", "概要レポートの作成"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec := HashEmbedding(tt.text)

			var magnitude float64
			for _, v := range vec {
				magnitude += float64(v) * float64(v)
			}
			magnitude = math.Sqrt(magnitude)

			if math.Abs(magnitude-1.0) > 1e-5 {
				t.Errorf("magnitude = %f, want 1.0", magnitude)
			}
		})
	}
}

func TestHashEmbeddingEmptyText(t *testing.T) {
	vec := HashEmbedding("")

	if len(vec) != Dimension {
		t.Fatalf("len = %d, want %d", len(vec), Dimension)
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("empty text should produce zero vector, got %v at %d", v, i)
		}
	}
}

func TestHashEmbeddingSimilarTextsCloser(t *testing.T) {
	base := HashEmbedding("machine learning model training")
	similar := HashEmbedding("machine learning model evaluation")
	unrelated := HashEmbedding("zebra xylophone quartz")

	simClose := dot(base, similar)
	simFar := dot(base, unrelated)

	if simClose <= simFar {
		t.Errorf("similar texts should score higher: close=%f far=%f", simClose, simFar)
	}
}

func TestFitDimension(t *testing.T) {
	tests := []struct {
		name string
		in   int
	}{
		{"shorter is padded", 384},
		{"exact passes through", Dimension},
		{"longer is truncated", 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]float32, tt.in)
			for i := range in {
				in[i] = float32(i + 1)
			}

			out := FitDimension(in)
			if len(out) != Dimension {
				t.Fatalf("len = %d, want %d", len(out), Dimension)
			}

			keep := tt.in
			if keep > Dimension {
				keep = Dimension
			}
			for i := 0; i < keep; i++ {
				if out[i] != in[i] {
					t.Fatalf("value changed at %d", i)
				}
			}
			for i := keep; i < Dimension; i++ {
				if out[i] != 0 {
					t.Fatalf("padding not zero at %d", i)
				}
			}
		})
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
