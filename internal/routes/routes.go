package routes

import (
	"net/http"

	"ai-act-chat/internal/handlers"

	"github.com/gorilla/mux"
)

// Handlers groups everything the router needs
type Handlers struct {
	Chat   *handlers.ChatHandler
	Health *handlers.HealthHandler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat", h.Chat.Chat).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/stats", h.Chat.Stats).Methods(http.MethodGet)
	api.HandleFunc("/reset", h.Chat.Reset).Methods(http.MethodPost, http.MethodOptions)
}
