// @title GlucoGard API
// @version 1.0
// @description Backend for the GlucoGard adaptive diabetes risk screening app.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"glucogard_backend/internal/app"
	"glucogard_backend/internal/config"
	"glucogard_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
