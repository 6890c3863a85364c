// Package cli consolidates the startup sequence shared by the qayd
// binaries: env loading, logging, configuration, and store setup.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"qayd/internal/config"
	"qayd/internal/log"
	"qayd/internal/storage"
)

// Bootstrap loads .env, builds the default logger, and returns a validated
// configuration. It exits the process on invalid configuration so every
// binary fails the same way.
func Bootstrap(component string) (*log.Logger, *config.Config) {
	// .env is for local development; production supplies real env vars.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	if component != "" {
		logger = logger.WithComponent(component)
	}
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return logger, cfg
}

// MustOpenSQLite opens the SQLite repository or exits. The worker requires
// SQLite specifically; the record pipeline lives in its tables.
func MustOpenSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
