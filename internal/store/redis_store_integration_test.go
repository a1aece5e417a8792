//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jserwatka/network/internal/domain"
)

// setupRedis starts a Redis container for testing
func setupRedis(t *testing.T) (*RedisCounterStore, func()) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	s := NewRedisCounterStoreFromClient(client, time.Minute)

	cleanup := func() {
		s.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}
	return s, cleanup
}

func TestRedisCounterStore(t *testing.T) {
	s, cleanup := setupRedis(t)
	defer cleanup()
	ctx := context.Background()

	_, found, err := s.GetCounts(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetCounts(ctx, 1, domain.FollowCounts{Followers: 3, Following: 4}))
	counts, found, err := s.GetCounts(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.FollowCounts{Followers: 3, Following: 4}, *counts)

	require.NoError(t, s.Invalidate(ctx, 1, 2))
	_, found, err = s.GetCounts(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordAccess(ctx, 7))
	}
	require.NoError(t, s.RecordAccess(ctx, 9))

	top, err := s.GetTopHotKeys(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, top)

	require.NoError(t, s.ResetHotKeyScores(ctx))
	top, err = s.GetTopHotKeys(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
