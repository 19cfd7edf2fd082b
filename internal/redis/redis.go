package redis

import (
	"context"
	"fmt"

	"github.com/daymark/daymark/internal/config"
	"github.com/redis/go-redis/v9"
)

// Open connects to the configured Redis instance and verifies the connection.
func Open(cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
