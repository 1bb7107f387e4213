package main

import (
	"os"

	"github.com/yigit/studentrecords/internal/pkg/logger"
	"github.com/yigit/studentrecords/internal/server"
)

// @title Student Records API
// @version 1.0
// @description Student records with profile pictures
// @BasePath /api

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Details are logged by the setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
