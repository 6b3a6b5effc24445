package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// Module owns the Redis client backing the task list cache.
type Module struct {
	list      *TaskList
	client    *redis.Client
	redisAddr string
	prefix    string
	ttl       time.Duration
	logger    types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the cache module. The Redis client connects lazily,
// so TaskList() is usable before Start.
func NewModule(redisAddr, prefix string, ttl time.Duration, logger types.Logger) *Module {
	client := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return &Module{
		list:      NewTaskList(client, prefix, ttl),
		client:    client,
		redisAddr: redisAddr,
		prefix:    prefix,
		ttl:       ttl,
		logger:    logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cache"
}

// TaskList returns the task list cache.
func (m *Module) TaskList() *TaskList {
	return m.list
}

// Start verifies the Redis connection.
func (m *Module) Start(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", m.redisAddr, err)
	}
	m.logger.Info("Connected to Redis", "addr", m.redisAddr, "prefix", m.prefix, "ttl", m.ttl.String())
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if err := m.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	m.logger.Info("Cache module stopped")
	return nil
}

// Health reports Redis reachability together with hit statistics.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.list.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}

	stats := m.list.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"redis_addr":    m.redisAddr,
			"hit_rate":      stats.HitRate,
			"stale_skips":   stats.StaleSkips,
			"invalidations": stats.Invalidations,
		},
	}
}
