package main

import (
	"context"
	"log"
	"net/http"

	"invitelinks-backend/infrastructure/config"
	"invitelinks-backend/infrastructure/di"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Logger.Sync()

	container.Logger.Info("Starting invite-links API",
		zap.String("address", cfg.ServerAddress),
		zap.String("environment", cfg.Environment),
	)

	if err := http.ListenAndServe(cfg.ServerAddress, container.Router); err != nil {
		container.Logger.Fatal("Server failed", zap.Error(err))
	}
}
