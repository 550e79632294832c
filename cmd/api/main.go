package main

import (
	"os"

	"github.com/yigit/facilityhub/internal/bootstrap"
	"github.com/yigit/facilityhub/internal/pkg/logger"
	"github.com/yigit/facilityhub/internal/server"
)

// @title FacilityHub API
// @version 1.0
// @description API for managing organizations, facilities, departments, quarters and faculty
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@facilityhub.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization, formatted as "Bearer <token>"

func main() {
	configPath := bootstrap.DefaultConfigPath
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	srv, err := server.NewServer(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
