package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"ai-act-chat/internal/repositories"
)

// HealthHandler reports liveness plus the state of the vector index
type HealthHandler struct {
	vectorRepo repositories.VectorRepository
	logger     *log.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(vectorRepo repositories.VectorRepository, logger *log.Logger) *HealthHandler {
	return &HealthHandler{
		vectorRepo: vectorRepo,
		logger:     logger,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]interface{}{
		"status": "healthy",
	}

	if err := h.vectorRepo.Ping(ctx); err != nil {
		// Degraded, not down: chat still works without retrieval
		status["status"] = "degraded"
		status["vector_index"] = "unavailable"
	} else {
		status["vector_index"] = "ok"
		if count, err := h.vectorRepo.Count(ctx); err == nil {
			status["indexed_documents"] = count
		}
	}

	writeJSON(w, h.logger, http.StatusOK, status)
}
