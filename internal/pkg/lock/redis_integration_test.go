//go:build integration

package lock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLocker(client)

	release, err := l.Acquire(ctx, "ana@x.com", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "ana@x.com", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, release(ctx))

	again, err := l.Acquire(ctx, "ana@x.com", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}
