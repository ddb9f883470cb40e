package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Workflow WorkflowConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	SerpApi    string
	DeepSeek   string
	EmbedTopic string // Watermill topic for async chunk embedding
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "deepseek"
	OllamaBaseURL     string
	OllamaModel       string
	EmbedTimeout      time.Duration
	LLMProvider       string // "ollama", "deepseek"
	LLMModel          string // e.g. "llama3", "deepseek-chat"
	DeepSeekBaseURL   string
}

// WorkflowConfig holds the tunables of the retrieval-sufficiency engine.
type WorkflowConfig struct {
	MinSimilarity  float64 // threshold for both the search filter and the evaluator
	MinCoverage    float64
	TopK           int
	GatePollEvery  time.Duration // minimum interval between confirmation polls
	MaxDirectChars int           // content cap when a document id is supplied
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			SerpApi:    getEnv("SERPAPI_API_KEY", ""),
			DeepSeek:   getEnv("DEEPSEEK_API_KEY", ""),
			EmbedTopic: getEnv("EMBED_CHUNK_TOPIC_NAME", "EMBED_DOCUMENT_CHUNKS"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbedTimeout:      getEnvAsDuration("EMBEDDING_TIMEOUT", 30*time.Second),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			DeepSeekBaseURL:   getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		},
		Workflow: WorkflowConfig{
			MinSimilarity:  getEnvAsFloat("WF_MIN_SIMILARITY", 0.3),
			MinCoverage:    getEnvAsFloat("WF_MIN_COVERAGE", 0.3),
			TopK:           getEnvAsInt("WF_TOP_K", 5),
			GatePollEvery:  getEnvAsDuration("WF_GATE_POLL_INTERVAL", 2*time.Second),
			MaxDirectChars: getEnvAsInt("WF_MAX_DIRECT_CHARS", 50000),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
