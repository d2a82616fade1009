package main

import (
	"os"

	"cjd/internal/logging"
)

func main() {
	// Bootstrap logger for startup errors; commands build their own
	// configured logger once the project config is loaded.
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.InfoLevel,
	})

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}
