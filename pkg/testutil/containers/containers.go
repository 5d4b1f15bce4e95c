// Package containers manages shared test containers for integration tests.
// Containers are started once per test binary and reused across suites; the
// testcontainers reaper tears them down when the binary exits.
package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"

	"vowline/internal/platform/postgres"
)

const (
	postgresImage = "postgres:16-alpine"
	redisImage    = "redis:7-alpine"
	redpandaImage = "docker.redpanda.com/redpandadata/redpanda:v24.1.7"
)

// Manager hands out shared containers. Use GetManager, never construct
// directly.
type Manager struct {
	mu sync.Mutex

	postgres *PostgresContainer
	redis    *RedisContainer
	redpanda *RedpandaContainer
}

var (
	managerOnce sync.Once
	manager     *Manager
)

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{}
	})
	return manager
}

// PostgresContainer wraps a running postgres with the schema migrated.
type PostgresContainer struct {
	DB        *sql.DB
	container *tcpostgres.PostgresContainer
}

// GetPostgres returns the shared postgres container, starting it on first use
// and applying all migrations.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postgres != nil {
		return m.postgres
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("vowline_test"),
		tcpostgres.WithUsername("vowline"),
		tcpostgres.WithPassword("vowline"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate postgres: %v", err)
	}

	m.postgres = &PostgresContainer{DB: db, container: container}
	return m.postgres
}

// TruncateTables empties the given tables between tests.
func (c *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	query := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	_, err := c.DB.ExecContext(ctx, query)
	return err
}

// RedisContainer wraps a running redis.
type RedisContainer struct {
	Client    *redis.Client
	container *tcredis.RedisContainer
}

// GetRedis returns the shared redis container, starting it on first use.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redis != nil {
		return m.redis
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping redis: %v", err)
	}

	m.redis = &RedisContainer{Client: client, container: container}
	return m.redis
}

// FlushAll clears every key between tests.
func (c *RedisContainer) FlushAll(ctx context.Context) error {
	return c.Client.FlushAll(ctx).Err()
}

// RedpandaContainer wraps a running kafka-compatible broker.
type RedpandaContainer struct {
	Brokers   []string
	container *tcredpanda.Container
}

// GetRedpanda returns the shared redpanda container, starting it on first use.
func (m *Manager) GetRedpanda(t *testing.T) *RedpandaContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redpanda != nil {
		return m.redpanda
	}

	ctx := context.Background()
	container, err := tcredpanda.Run(ctx, redpandaImage)
	if err != nil {
		t.Fatalf("start redpanda container: %v", err)
	}
	broker, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		t.Fatalf("redpanda seed broker: %v", err)
	}

	m.redpanda = &RedpandaContainer{Brokers: []string{broker}, container: container}
	return m.redpanda
}
