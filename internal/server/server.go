package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"ai-act-chat/internal/config"
	"ai-act-chat/internal/db"
	"ai-act-chat/internal/handlers"
	"ai-act-chat/internal/repositories"
	"ai-act-chat/internal/routes"
	"ai-act-chat/internal/services"

	"github.com/gorilla/mux"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewServer wires the full service graph and returns a configured
// http.Server
func NewServer(cfg *config.Config) *http.Server {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	vectorRepo := initializeVectorRepository(cfg, logger)
	limiter := initializeRateLimiter(cfg, logger)

	embedder := services.NewEmbeddingService(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel, 30*time.Second)
	llm := services.NewLLMService(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)

	retriever := services.NewRetriever(embedder, vectorRepo, log.New(os.Stdout, "[RETRIEVER] ", log.LstdFlags))
	analyzer := services.NewHeuristicAnalyzer(log.New(os.Stdout, "[ANALYZER] ", log.LstdFlags))
	generator := services.NewResponseGenerator(llm, cfg.EnableFormatter, log.New(os.Stdout, "[GENERATOR] ", log.LstdFlags))
	memory := services.NewConversationMemory(cfg.MemoryWindow)

	chatter := services.NewChatter(analyzer, retriever, generator, memory, log.New(os.Stdout, "[CHATTER] ", log.LstdFlags))

	h := &routes.Handlers{
		Chat:   handlers.NewChatHandler(chatter, limiter, logger),
		Health: handlers.NewHealthHandler(vectorRepo, logger),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	return &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsMiddleware(router),
	}
}

// initializeVectorRepository picks the index backend from configuration.
// Both backends tolerate a missing index: search degrades to empty results.
func initializeVectorRepository(cfg *config.Config, logger *log.Logger) repositories.VectorRepository {
	switch cfg.IndexBackend {
	case "chroma":
		logger.Printf("Using ChromaDB index backend: %s:%d collection %q",
			cfg.ChromaHost, cfg.ChromaPort, cfg.ChromaCollection)
		client := db.NewChromaDBClient(db.ChromaDBConfig{
			Host: cfg.ChromaHost,
			Port: cfg.ChromaPort,
		})
		return repositories.NewChromaVectorRepository(client, cfg.ChromaCollection)

	default:
		logger.Printf("Using SQLite index backend: %s", cfg.IndexPath)
		return repositories.NewSQLiteVectorRepository(cfg.IndexPath, logger)
	}
}

// initializeRateLimiter picks the rate-limit backend. Redis keeps the daily
// budget shared across replicas; memory is the single-process default.
func initializeRateLimiter(cfg *config.Config, logger *log.Logger) services.DailyLimiter {
	if cfg.RateLimitBackend == "redis" {
		redisClient, err := db.NewRedisClient(db.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = redisClient.Ping(ctx)
			cancel()
		}
		if err == nil {
			logger.Printf("Using redis rate limiter: %s:%d (limit %d/day)",
				cfg.RedisHost, cfg.RedisPort, cfg.DailyLimit)
			return services.NewRedisDailyLimiter(redisClient, cfg.DailyLimit, logger)
		}
		logger.Printf("Redis unavailable (%v), falling back to in-memory rate limiter", err)
	}

	logger.Printf("Using in-memory rate limiter (limit %d/day)", cfg.DailyLimit)
	return services.NewMemoryDailyLimiter(cfg.DailyLimit)
}
