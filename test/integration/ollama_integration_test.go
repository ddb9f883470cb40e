package integration

import (
	"log"
	"os"
	"testing"
	"time"

	"ai-reportgen-be/pkg/embedding"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestOllamaEmbedding(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		t.Skip("Skipping integration test: OLLAMA_BASE_URL not set")
	}
	model := os.Getenv("OLLAMA_EMBEDDING_MODEL")
	if model == "" {
		model = "nomic-embed-text"
	}

	provider := embedding.NewOllamaProvider(baseURL, model, 30*time.Second)

	res, err := provider.Generate("solar panel economics", "retrieval_query")
	if err != nil {
		t.Fatalf("Ollama generate failed: %v", err)
	}

	vec := embedding.FitDimension(res.Embedding.Values)
	assert.Len(t, vec, embedding.Dimension)

	nonZero := false
	for _, v := range vec {
		if v != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero, "embedding should not be all zeros")
}
