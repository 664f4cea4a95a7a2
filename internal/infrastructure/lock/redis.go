package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/ports"
)

const defaultTTL = 10 * time.Minute

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a cross-process run lock built on SET NX PX.
type Redis struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.RunLock = (*Redis)(nil)

// NewRedis wires a client; ttl bounds how long a crashed holder blocks others.
func NewRedis(client redis.UniversalClient, key string, ttl time.Duration, logger *slog.Logger) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, key: key, ttl: ttl, logger: logger}
}

// NewRedisFromURL parses a redis:// URL into a client-backed lock.
func NewRedisFromURL(rawURL, key string, ttl time.Duration, logger *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedis(redis.NewClient(opts), key, ttl, logger), nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Acquire sets the key with a unique token; release deletes it if still ours.
func (r *Redis) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx %s: %w", r.key, err)
	}
	if !ok {
		return nil, domain.ErrRunInProgress
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{r.key}, token).Err(); err != nil && r.logger != nil {
			r.logger.Warn("release run lock", "key", r.key, "error", err)
		}
	}
	return release, nil
}
