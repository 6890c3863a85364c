package backend

import (
	"fmt"
	"log/slog"

	"qayd/internal/config"
	"qayd/internal/storage"
)

// Factory creates stores from configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// CreateStore builds the store named by cfg.DataBackend.
func (f *Factory) CreateStore(cfg *config.Config) (*Result, error) {
	switch Type(cfg.DataBackend) {
	case FileBackend:
		return f.createFileStore(cfg)
	case SQLiteBackend:
		return f.createSQLiteStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}

func (f *Factory) createFileStore(cfg *config.Config) (*Result, error) {
	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initialize file store: %w", err)
	}

	f.logger.Info("Initialized file backend", "data_dir", cfg.DataDir)

	return &Result{Store: store, Cleanup: store.Close}, nil
}

func (f *Factory) createSQLiteStore(cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	return &Result{Store: repo, Cleanup: repo.Close}, nil
}
