package redis_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/babble-backend/internal/adapter/redis"
)

var (
	once      sync.Once
	sharedAdr string
	initErr   error
)

// redisAddr starts a shared Redis container once for the test run.
func redisAddr(t *testing.T) string {
	t.Helper()

	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			initErr = fmt.Errorf("start container: %w", err)
			return
		}
		host, err := container.Host(ctx)
		if err != nil {
			initErr = fmt.Errorf("get container host: %w", err)
			return
		}
		port, err := container.MappedPort(ctx, "6379")
		if err != nil {
			initErr = fmt.Errorf("get mapped port: %w", err)
			return
		}
		sharedAdr = host + ":" + port.Port()
	})
	if initErr != nil {
		t.Fatalf("redis container: %v", initErr)
	}
	return sharedAdr
}

func newStore(t *testing.T, ttl time.Duration) *redis.IdempotencyStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := redis.NewIdempotencyStore(context.Background(), redisAddr(t), ttl, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIdempotencyStore_ClaimOnce(t *testing.T) {
	t.Parallel()
	s := newStore(t, time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	ok, err := s.Claim(ctx, userID, "req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Claim(ctx, userID, "req-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Same key for another user is independent.
	ok, err = s.Claim(ctx, uuid.New(), "req-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyStore_Release(t *testing.T) {
	t.Parallel()
	s := newStore(t, time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	ok, err := s.Claim(ctx, userID, "req-2")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Release(ctx, userID, "req-2"))

	ok, err = s.Claim(ctx, userID, "req-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyStore_Expires(t *testing.T) {
	t.Parallel()
	s := newStore(t, time.Second)
	ctx := context.Background()
	userID := uuid.New()

	ok, err := s.Claim(ctx, userID, "req-3")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		ok, err := s.Claim(ctx, userID, "req-3")
		return err == nil && ok
	}, 5*time.Second, 200*time.Millisecond)
}

func TestNewIdempotencyStore_Unreachable(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := redis.NewIdempotencyStore(ctx, "127.0.0.1:1", time.Minute, logger)
	assert.Error(t, err)
}
