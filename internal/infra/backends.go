package infra

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/loandesk/loandesk/internal/config"
)

// Backends holds the optional external stores. A nil field means the
// in-memory implementation is used for that concern.
type Backends struct {
	DB    *pgxpool.Pool
	Cache *redis.Client
}

// Open connects to whichever backends are configured and applies the schema.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Backends, error) {
	var b Backends
	if cfg.DatabaseURL != "" {
		db, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return Backends{}, err
		}
		if err := Migrate(ctx, db); err != nil {
			db.Close()
			return Backends{}, err
		}
		b.DB = db
		logger.Info("postgres connected")
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
	}

	if cfg.RedisURL != "" {
		cache, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			b.Close()
			return Backends{}, err
		}
		b.Cache = cache
		logger.Info("redis connected")
	} else {
		logger.Warn("REDIS_URL not set, using in-memory otp and session stores")
	}
	return b, nil
}

// Close releases every open connection.
func (b Backends) Close() error {
	var err error
	if b.Cache != nil {
		err = b.Cache.Close()
	}
	if b.DB != nil {
		b.DB.Close()
	}
	return err
}
