// Package dbtest provides throwaway databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/db"
)

const redisImage = "redis:7-alpine"

// SQLite returns a migrated in-memory database closed at the end of the test.
func SQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	pool, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

// Redis starts a Redis container and returns a client for it. The test is
// skipped in -short mode or when no container runtime is available.
func Redis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to read redis connection string: %v", err)
	}
	client, err := db.NewRedisClient(ctx, uri)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}
