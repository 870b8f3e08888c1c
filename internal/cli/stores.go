package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"worksheet-quiz/internal/app"
	"worksheet-quiz/internal/config"
	"worksheet-quiz/internal/infra/memory"
	"worksheet-quiz/internal/infra/postgres"
	infraredis "worksheet-quiz/internal/infra/redis"
	"worksheet-quiz/internal/logger"
)

func newLogger(cfg config.Config) *logrus.Entry {
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return logger.New("worksheet-quiz", level, cfg.Log.Format)
}

// backends holds the connections behind the blob stores so callers can
// reuse the Redis client and close everything on exit.
type backends struct {
	redis    *redis.Client
	pool     *pgxpool.Pool
	cacheTTL time.Duration
}

func (b *backends) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

// blobStore builds the store chain for one key: Postgres is the durable store
// when configured, Redis caches it (or stands alone), and process memory is
// the fallback cache or store.
func (b *backends) blobStore(key string) app.BlobStore {
	var durable app.BlobStore
	if b.pool != nil {
		durable = postgres.NewBlobStore(b.pool, key)
	}
	switch {
	case b.redis != nil:
		return infraredis.NewBlobStore(b.redis, key, durable, b.cacheTTL)
	case durable != nil:
		return memory.NewCachedBlobStore(durable, b.cacheTTL)
	default:
		return memory.NewBlobStore()
	}
}

// playerKey namespaces a player's library under the configured store key.
func playerKey(cfg config.Config, playerID string) string {
	return cfg.Store.Key + ":" + playerID
}

func openBackends(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*backends, error) {
	b := &backends{cacheTTL: config.TTLDuration(cfg.Store.CacheTTL, 10*time.Minute)}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
	}

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	log.WithFields(logrus.Fields{
		"postgres": b.pool != nil,
		"redis":    b.redis != nil,
		"key":      cfg.Store.Key,
	}).Info("worksheet storage ready")
	return b, nil
}
