package main

import (
	"log"

	"ai-act-chat/internal/config"
	"ai-act-chat/internal/server"
)

func main() {
	cfg := config.Load()

	log.Printf("Starting chat server on :%s", cfg.Port)
	srv := server.NewServer(cfg)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
