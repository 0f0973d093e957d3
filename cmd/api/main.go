package main

import (
	"user-profile-api/pkg/logger"
)

// @title User Profile API
// @version 1.0
// @description Stores user profiles keyed by identity-provider uid, with their addresses.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := LoadConfiguration()

	app, err := NewApp(cfg)
	if err != nil {
		logger.GlobalLogger.Fatalf("Failed to start: %v", err)
	}
	defer app.cleanup()

	app.InitializeServer()
	app.StartServer()
}
