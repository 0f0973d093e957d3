// Package cache provides Redis caching for user lookups.
package cache

import (
	"context"
	"fmt"
	"time"

	"user-profile-api/pkg/config"
	"user-profile-api/pkg/logger"
	"user-profile-api/pkg/metrics"

	"github.com/go-redis/redis/v8"
)

// NewRedis connects to Redis with the provided configuration and verifies the connection.
func NewRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	_, err := client.Ping(ctx).Result()
	metrics.ObserveRedis("ping", start, err)
	if err != nil {
		_ = client.Close()
		logger.GlobalLogger.Errorf("failed to connect to Redis: %v", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.GlobalLogger.Println("Redis connected successfully")
	return client, nil
}

// CloseRedis closes the Redis client connection.
func CloseRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		logger.GlobalLogger.Errorf("error closing Redis: %v", err)
	} else {
		logger.GlobalLogger.Println("Redis connection closed")
	}
}
