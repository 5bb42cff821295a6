package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"venture-match-backend/internal/common/config"
	"venture-match-backend/internal/common/logger"
)

// Open creates a new Redis client and pings it to validate the connection.
func Open(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)

	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}

	logger.Info().Str("addr", addr).Int("db", cfg.Redis.DB).Msg("Redis client initialized")

	return c, nil
}
