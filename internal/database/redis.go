package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/hansik/backend/config"
)

// RedisOptions builds client options from cfg. REDIS_URL wins over the
// individual host settings.
func RedisOptions(cfg *config.Config) (*redis.Options, error) {
	// Use Redis URL if provided (for production deployments)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		return opts, nil
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

// NewRedisClient creates a new Redis client and checks the connection
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("Successfully connected to Redis at %s", opts.Addr)
	return client, nil
}
