package main

import (
	"context"
	"fmt"

	"github.com/okian/typerank/internal/adapters/repository"
	"github.com/okian/typerank/internal/config"
)

// openStore builds the document store selected by cfg.StorageBackend.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendFile:
		return repository.NewFileStore(cfg.DataFile), nil
	case config.BackendMemory:
		return repository.NewMemoryStore(), nil
	case config.BackendSQLite:
		return repository.OpenSQLite(ctx, cfg.SQLitePath)
	case config.BackendRedis:
		return repository.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			repository.WithRedisKey(cfg.RedisKey))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
