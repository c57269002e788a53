package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, read once from the environment at
// startup
type Config struct {
	Port string

	// Vector index
	IndexBackend     string // "sqlite" or "chroma"
	IndexPath        string // sqlite index file
	ChromaHost       string
	ChromaPort       int
	ChromaCollection string

	// Language model and embeddings
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMTimeout     time.Duration
	EmbeddingModel string

	// Formatting pass over draft answers; off saves one model call per turn
	EnableFormatter bool

	// Conversation memory window, in exchanges
	MemoryWindow int

	// Daily rate limit
	DailyLimit       int
	RateLimitBackend string // "memory" or "redis"
	RedisHost        string
	RedisPort        int
	RedisPassword    string
	RedisDB          int
}

// Load reads configuration from the environment, with a best-effort .env
// load first
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		IndexBackend:     getEnv("INDEX_BACKEND", "sqlite"),
		IndexPath:        getEnv("INDEX_PATH", "data/vector_index.db"),
		ChromaHost:       getEnv("CHROMA_HOST", "localhost"),
		ChromaPort:       getEnvInt("CHROMA_PORT", 8000),
		ChromaCollection: getEnv("CHROMA_COLLECTION", "eu-ai-act"),

		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:      getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		EnableFormatter: getEnvBool("ENABLE_FORMATTER", true),

		MemoryWindow: getEnvInt("MEMORY_WINDOW", 10),

		DailyLimit:       getEnvInt("DAILY_LIMIT", 100),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "memory"),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnvInt("REDIS_PORT", 6379),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
