package main

import (
	"smartkanban/internal/config"
	"smartkanban/internal/logging"
	"smartkanban/internal/server"
)

// @title           Smart Kanban API
// @version         1.0
// @description     Projects and tasks for the Smart Kanban board.

// @host      localhost:3001
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

// @schemes http
func main() {
	cfg := config.Load()
	logger := logging.New(logging.Options{
		Level:           cfg.LogLevel,
		Format:          cfg.LogFormat,
		ReportTimestamp: true,
	})

	s, err := server.Init(cfg, logger)
	if err != nil {
		logger.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
