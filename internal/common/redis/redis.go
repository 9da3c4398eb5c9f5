package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis configuration. An empty address disables Redis.
type Config struct {
	Addr         string        `envconfig:"REDIS_ADDR"`
	Password     string        `envconfig:"REDIS_PASSWORD"`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix    string        `envconfig:"REDIS_KEY_PREFIX" default:"gr4vydemo:"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether a Redis address was configured
func (c Config) Enabled() bool {
	return c.Addr != ""
}

// Client wraps a go-redis client with a key prefix
type Client struct {
	rdb       *redis.Client
	keyPrefix string
	logger    *slog.Logger
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	logger.Info("redis connection established", "addr", cfg.Addr, "db", cfg.DB)

	return &Client{
		rdb:       rdb,
		keyPrefix: cfg.KeyPrefix,
		logger:    logger,
	}, nil
}

// Key returns key with the configured prefix
func (c *Client) Key(key string) string {
	return c.keyPrefix + key
}

// Cmdable exposes the underlying command set
func (c *Client) Cmdable() redis.Cmdable {
	return c.rdb
}

// HealthCheck pings Redis
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection pool
func (c *Client) Close() error {
	c.logger.Info("closing redis connection")
	return c.rdb.Close()
}
