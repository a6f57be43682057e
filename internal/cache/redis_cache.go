package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Tapedynamics/Twittich/internal/config"
	"github.com/Tapedynamics/Twittich/internal/domain"
)

// RedisSessionCache implements SessionCache on go-redis.
type RedisSessionCache struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionCache creates a session cache and verifies connectivity.
func NewRedisSessionCache(cfg config.RedisConfig, prefix string) (*RedisSessionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSessionCache{
		client: client,
		prefix: prefix,
	}, nil
}

func (c *RedisSessionCache) activeKey() string {
	return fmt.Sprintf("%s:session:active", c.prefix)
}

// GetActive returns the cached active session.
func (c *RedisSessionCache) GetActive(ctx context.Context) (*domain.LiveSession, error) {
	data, err := c.client.Get(ctx, c.activeKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var session domain.LiveSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached session: %w", err)
	}

	return &session, nil
}

// SetActive caches the active session with a TTL.
func (c *RedisSessionCache) SetActive(ctx context.Context, session *domain.LiveSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := c.client.Set(ctx, c.activeKey(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

// InvalidateActive removes the cached active session.
func (c *RedisSessionCache) InvalidateActive(ctx context.Context) error {
	if err := c.client.Del(ctx, c.activeKey()).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisSessionCache) Close() error {
	return c.client.Close()
}
