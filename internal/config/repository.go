package config

import (
	"fmt"
	"os"

	"todo-sync/internal/errors"
	"todo-sync/internal/repository/sqlite"
)

// CreateRepository opens the local task cache described by the configuration,
// creating the data directory when needed
func CreateRepository(config *Config) (sqlite.Repository, error) {
	dbPath := config.GetDatabasePath()

	if dbPath != MemoryDatabase {
		if err := os.MkdirAll(config.Database.Dir, 0o755); err != nil {
			return nil, errors.NewStorageError("create data directory "+config.Database.Dir, err)
		}
	}

	repo, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task cache: %w", err)
	}

	return repo, nil
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (sqlite.Repository, error) {
	repo, err := sqlite.New(MemoryDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test task cache: %w", err)
	}

	return repo, nil
}
