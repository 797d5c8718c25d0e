package backend

import (
	"context"
	"fmt"
	"log/slog"

	"clientledger/internal/config"
	"clientledger/internal/feed/api"
	"clientledger/internal/feed/memory"
	"clientledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(_ context.Context, cfg *config.Config) (*Result, error) {
	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case SQLiteBackend:
		return f.createSQLiteSource(cfg)
	case APIBackend:
		return f.createAPISource(cfg)
	case MemoryBackend:
		return f.createMemorySource(cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}

func (f *DefaultFactory) createSQLiteSource(cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite job source", "db_path", cfg.SQLiteDBPath)

	return &Result{
		Source:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createAPISource(cfg *config.Config) (*Result, error) {
	client := api.NewClient(cfg.FeedAPIURL)

	f.logger.Info("Initialized remote feed job source", "url", cfg.FeedAPIURL)

	return &Result{
		Source:  client,
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) createMemorySource(cfg *config.Config) (*Result, error) {
	dataDir := cfg.SeedDataDir
	if dataDir == "" {
		dataDir = "data"
	}

	store := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory job source", "data_directory", dataDir)

	return &Result{
		Source:  store,
		Cleanup: nil,
	}, nil
}
