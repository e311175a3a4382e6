package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds Redis connection settings
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	Enabled      bool
	PoolSize     int
	MinIdleConns int
}

// Client wraps the go-redis client; when disabled all accessors return nil
// and callers fall back to in-process alternatives.
type Client struct {
	rdb     *redis.Client
	enabled bool
	logger  *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if !cfg.Enabled {
		return &Client{enabled: false, logger: log}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr(cfg),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	client := &Client{rdb: rdb, enabled: true, logger: log}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		log.Warn("Failed to connect to Redis, continuing without it",
			zap.String("address", addr(cfg)),
			zap.Error(err),
		)
		client.enabled = false
		client.rdb = nil
		return client
	}

	log.Info("Successfully connected to Redis",
		zap.String("address", addr(cfg)),
		zap.Int("database", cfg.DB),
	)

	return client
}

func addr(cfg Config) string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

func (c *Client) IsEnabled() bool {
	return c.enabled
}

// Raw exposes the underlying client for subsystems that manage their own
// key layout (session store). Nil when Redis is disabled.
func (c *Client) Raw() *redis.Client {
	return c.rdb
}

func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
