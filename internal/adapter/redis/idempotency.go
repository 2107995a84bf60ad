// Package redis holds Redis-backed adapters.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "babble:idem:"

// IdempotencyStore remembers submission keys for a limited time so a retried
// request can be recognized and skipped.
type IdempotencyStore struct {
	rdb *goredis.Client
	ttl time.Duration
	log *slog.Logger
}

// NewIdempotencyStore connects to addr and verifies the connection.
func NewIdempotencyStore(ctx context.Context, addr string, ttl time.Duration, logger *slog.Logger) (*IdempotencyStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &IdempotencyStore{
		rdb: rdb,
		ttl: ttl,
		log: logger.With("adapter", "redis_idempotency"),
	}, nil
}

// Claim records key for userID. It returns false when the key was already
// claimed within the TTL.
func (s *IdempotencyStore) Claim(ctx context.Context, userID uuid.UUID, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, redisKey(userID, key), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if !ok {
		s.log.DebugContext(ctx, "idempotency key already claimed",
			slog.String("user_id", userID.String()),
			slog.String("key", key),
		)
	}
	return ok, nil
}

// Release forgets key so a failed request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, userID uuid.UUID, key string) error {
	if err := s.rdb.Del(ctx, redisKey(userID, key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *IdempotencyStore) Close() error {
	return s.rdb.Close()
}

func redisKey(userID uuid.UUID, key string) string {
	return keyPrefix + userID.String() + ":" + key
}
