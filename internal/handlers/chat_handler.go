package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"ai-act-chat/internal/models"
	"ai-act-chat/internal/services"

	"github.com/google/uuid"
)

// ChatHandler exposes the conversation orchestrator over HTTP. The rate
// limiter is checked here, before any paid upstream call happens.
type ChatHandler struct {
	chatter *services.Chatter
	limiter services.DailyLimiter
	logger  *log.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatter *services.Chatter, limiter services.DailyLimiter, logger *log.Logger) *ChatHandler {
	return &ChatHandler{
		chatter: chatter,
		limiter: limiter,
		logger:  logger,
	}
}

// errorResponse is the body returned for requests rejected before the
// orchestrator runs
type errorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var request models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{
			RequestID: requestID,
			Error:     "Invalid request body: " + err.Error(),
			ErrorKind: services.ErrorKindInternal,
		})
		return
	}

	if request.Message == "" {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{
			RequestID: requestID,
			Error:     "Message is required",
			ErrorKind: services.ErrorKindEmptyQuery,
		})
		return
	}

	admitted, err := h.limiter.Admit(r.Context())
	if err != nil {
		h.logger.Printf("[%s] Rate limiter check failed: %v", requestID, err)
		writeJSON(w, h.logger, http.StatusInternalServerError, errorResponse{
			RequestID: requestID,
			Error:     "Internal error",
			ErrorKind: services.ErrorKindInternal,
		})
		return
	}
	if !admitted {
		h.logger.Printf("[%s] Daily limit reached, rejecting request", requestID)
		writeJSON(w, h.logger, http.StatusTooManyRequests, errorResponse{
			RequestID: requestID,
			Error:     "Daily request limit reached. Please try again tomorrow.",
			ErrorKind: services.ErrorKindRateLimited,
		})
		return
	}

	if count, err := h.limiter.Record(r.Context()); err != nil {
		h.logger.Printf("[%s] Failed to record request: %v", requestID, err)
	} else {
		h.logger.Printf("[%s] Request %d of today's budget", requestID, count)
	}

	result := h.chatter.Chat(r.Context(), request.Message)

	status := http.StatusOK
	if !result.Success && result.ErrorKind == services.ErrorKindEmptyQuery {
		status = http.StatusBadRequest
	}

	writeJSON(w, h.logger, status, models.ChatResponse{
		RequestID:  requestID,
		ChatResult: result,
	})
}

// Stats handles GET /api/stats
func (h *ChatHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.chatter.Stats())
}

// Reset handles POST /api/reset
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.chatter.Reset()
	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"message": "Conversation memory has been reset.",
	})
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Printf("Failed to encode response: %v", err)
	}
}
