package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"stockpulse/internal/adapters/config"
)

// Client wraps Redis client
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &Client{rdb: rdb}, nil
}

// Client returns the underlying Redis client
func (c *Client) Client() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health checks Redis connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// AcquireLock acquires a distributed lock; returns false if already held
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, "lock:"+key, "1", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Client) ReleaseLock(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, "lock:"+key).Err()
}

// TurnLocker serializes conversation turns per user via redis locks.
// Turns for different users run concurrently; two turns for the same
// user must never interleave their read-modify-persist cycle.
type TurnLocker struct {
	client *Client
}

// NewTurnLocker creates a turn locker backed by the redis client
func NewTurnLocker(client *Client) *TurnLocker {
	return &TurnLocker{client: client}
}

// Acquire takes the per-user turn lock; returns false if a turn is in flight
func (l *TurnLocker) Acquire(ctx context.Context, userID string, ttl time.Duration) (bool, error) {
	return l.client.AcquireLock(ctx, "turn:"+userID, ttl)
}

// Release frees the per-user turn lock
func (l *TurnLocker) Release(ctx context.Context, userID string) error {
	return l.client.ReleaseLock(ctx, "turn:"+userID)
}
