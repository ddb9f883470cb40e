package knowledge

import (
	"strings"
	"testing"

	"ai-reportgen-be/internal/entity"

	"github.com/google/uuid"
)

func makeHit(doc uuid.UUID, content string, similarity float64) SearchHit {
	return SearchHit{
		Chunk: &entity.Chunk{
			Id:         uuid.New(),
			DocumentId: doc,
			Content:    content,
		},
		Similarity: similarity,
		DocumentId: doc,
	}
}

func TestEvaluateEmptyHits(t *testing.T) {
	e := NewEvaluator(0.3, 0.3)
	res := e.Evaluate("annual revenue report", nil)

	if res.Level != LevelIrrelevant {
		t.Errorf("Level = %s, want irrelevant", res.Level)
	}
	if res.Confidence != 0.0 {
		t.Errorf("Confidence = %f, want 0.0", res.Confidence)
	}
	if res.Coverage != 0.0 {
		t.Errorf("Coverage = %f, want 0.0", res.Coverage)
	}
	if !res.NeedsConfirmation {
		t.Error("NeedsConfirmation = false, want true")
	}
}

func TestEvaluateHighSimilarityOverride(t *testing.T) {
	// One hit above 0.75 forces sufficient no matter how weak coverage
	// and quality are.
	e := NewEvaluator(0.3, 0.3)
	doc := uuid.New()
	hits := []SearchHit{
		makeHit(doc, "zzz", 0.8),
	}

	res := e.Evaluate("completely unrelated query words", hits)

	if res.Level != LevelSufficient {
		t.Errorf("Level = %s, want sufficient", res.Level)
	}
	if res.NeedsConfirmation {
		t.Error("NeedsConfirmation = true, want false")
	}
}

func TestEvaluateLowCoverageBlocksSufficient(t *testing.T) {
	// Similarity passes the threshold but keyword coverage does not:
	// coverage = 0.6*0 + 0.4*0.5 = 0.2 < 0.3.
	e := NewEvaluator(0.3, 0.3)
	doc := uuid.New()
	hits := []SearchHit{
		makeHit(doc, "unrelated words entirely", 0.5),
	}

	res := e.Evaluate("quantum entanglement research", hits)

	if res.Level != LevelInsufficient {
		t.Errorf("Level = %s, want insufficient", res.Level)
	}
	if res.Coverage >= 0.3 {
		t.Errorf("Coverage = %f, want < 0.3", res.Coverage)
	}
	if !res.NeedsConfirmation {
		t.Error("NeedsConfirmation = false, want true")
	}
}

func TestEvaluateGoodOverlapIsSufficient(t *testing.T) {
	e := NewEvaluator(0.3, 0.3)
	docA := uuid.New()
	docB := uuid.New()

	filler := strings.Repeat("market growth analysis revenue segments forecast ", 25)
	hits := []SearchHit{
		makeHit(docA, "market growth analysis for the fintech sector "+filler, 0.6),
		makeHit(docB, "revenue forecast and market segments overview "+filler, 0.55),
	}

	res := e.Evaluate("market growth revenue forecast", hits)

	if res.Level != LevelSufficient {
		t.Fatalf("Level = %s, want sufficient (reason: %s)", res.Level, res.Reason)
	}
	if res.NeedsConfirmation {
		t.Error("NeedsConfirmation = true, want false")
	}
}

func TestEvaluateNoKeywordsDefaultsCoverage(t *testing.T) {
	// A query of only stop words and single characters has no extractable
	// keywords; coverage falls back to 0.5.
	e := NewEvaluator(0.3, 0.3)
	doc := uuid.New()
	hits := []SearchHit{
		makeHit(doc, "some stored content", 0.4),
	}

	res := e.Evaluate("is it a an of", hits)

	if res.Coverage != 0.5 {
		t.Errorf("Coverage = %f, want 0.5", res.Coverage)
	}
}

func TestEvaluateBounds(t *testing.T) {
	e := NewEvaluator(0.3, 0.3)
	doc := uuid.New()

	tests := []struct {
		name string
		hits []SearchHit
	}{
		{"single weak hit", []SearchHit{makeHit(doc, "x", 0.01)}},
		{"single perfect hit", []SearchHit{makeHit(doc, strings.Repeat("report content ", 200), 1.0)}},
		{"many mixed hits", []SearchHit{
			makeHit(doc, "alpha beta", 0.9),
			makeHit(uuid.New(), "gamma delta", 0.1),
			makeHit(uuid.New(), "epsilon", 0.45),
			makeHit(uuid.New(), strings.Repeat("long content ", 100), 0.7),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Evaluate("report content alpha", tt.hits)

			if res.Confidence < 0 || res.Confidence > 1 {
				t.Errorf("Confidence = %f, out of [0,1]", res.Confidence)
			}
			if res.Coverage < 0 || res.Coverage > 1 {
				t.Errorf("Coverage = %f, out of [0,1]", res.Coverage)
			}
			if res.Quality < 0 || res.Quality > 1 {
				t.Errorf("Quality = %f, out of [0,1]", res.Quality)
			}
			if (res.Level == LevelSufficient) == res.NeedsConfirmation {
				t.Errorf("NeedsConfirmation = %v inconsistent with Level = %s", res.NeedsConfirmation, res.Level)
			}
		})
	}
}

func TestEvaluateIsPure(t *testing.T) {
	e := NewEvaluator(0.3, 0.3)
	doc := uuid.New()
	hits := []SearchHit{
		makeHit(doc, "growth projections for the next quarter", 0.62),
		makeHit(doc, "historical quarterly figures", 0.41),
	}

	first := e.Evaluate("quarterly growth projections", hits)
	second := e.Evaluate("quarterly growth projections", hits)

	if first.Level != second.Level ||
		first.Confidence != second.Confidence ||
		first.Coverage != second.Coverage ||
		first.Quality != second.Quality {
		t.Error("identical inputs produced different results")
	}
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
		skip []string
	}{
		{
			name: "drops stop words and short tokens",
			text: "What is the annual revenue of X?",
			want: []string{"annual", "revenue"},
			skip: []string{"what", "is", "the", "of", "x"},
		},
		{
			name: "lowercases",
			text: "Market ANALYSIS",
			want: []string{"market", "analysis"},
		},
		{
			name: "splits on punctuation",
			text: "growth, forecast; revenue/segments",
			want: []string{"growth", "forecast", "revenue", "segments"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.text)
			for _, w := range tt.want {
				if !got[w] {
					t.Errorf("missing keyword %q", w)
				}
			}
			for _, s := range tt.skip {
				if got[s] {
					t.Errorf("unexpected keyword %q", s)
				}
			}
		})
	}
}
