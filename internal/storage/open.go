package storage

import (
	"context"
	"fmt"

	"shopstream/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Open creates the backend selected by cfg.Backend. The Redis backend is
// pinged before it is returned.
func Open(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (Storage, error) {
	logger = logger.With().Str("component", "storage").Str("backend", cfg.Backend).Logger()

	switch cfg.Backend {
	case config.StorageFile:
		st, err := NewFileStorage(cfg.Dir, logger)
		if err != nil {
			return nil, err
		}
		return st, nil

	case config.StorageSQLite:
		st, err := NewSQLiteStorage(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return st, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddress, err)
		}
		logger.Info().Str("address", cfg.RedisAddress).Int("db", cfg.RedisDB).Msg("redis storage ready")
		return NewRedisStorage(client, cfg.RedisPrefix), nil

	case config.StorageMemory:
		logger.Warn().Msg("cart is kept in memory and will not survive a restart")
		return NewMemoryStorage(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}
