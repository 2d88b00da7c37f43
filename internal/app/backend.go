package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/reel/internal/config"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/redis"
	"github.com/MrSnakeDoc/reel/internal/store"
	"github.com/MrSnakeDoc/reel/internal/store/file"
	"github.com/MrSnakeDoc/reel/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/reel/internal/store/redis"
	"github.com/MrSnakeDoc/reel/internal/store/sqlite"
)

// Backend is an opened storage backend plus its optional health probe.
type Backend struct {
	store.Backend
	Name string
	Ping func(ctx context.Context) error
}

// OpenBackend opens the backend selected by REEL_STORAGE.
func OpenBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (*Backend, error) {
	log = logger.Component(log, "storage")

	switch cfg.Storage {
	case config.StorageFile:
		s, err := file.Open(cfg.DataFile, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open data file: %w", err)
		}
		log.Info("file storage opened", logger.String("path", s.Path()))
		return &Backend{Backend: s, Name: cfg.Storage}, nil

	case config.StorageSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		log.Info("sqlite storage opened", logger.String("path", cfg.SQLitePath))
		return &Backend{Backend: s, Name: cfg.Storage, Ping: s.Ping}, nil

	case config.StorageRedis:
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), log)
		if err != nil {
			return nil, err
		}
		s := redisstore.NewStore(client)
		return &Backend{Backend: s, Name: cfg.Storage, Ping: s.Ping}, nil

	case config.StorageMemory:
		log.Warn("memory storage selected, nothing survives a restart")
		return &Backend{Backend: memory.New(), Name: cfg.Storage}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
