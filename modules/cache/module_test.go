package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func TestModule_HealthReportsRedisOutage(t *testing.T) {
	m := NewModule("127.0.0.1:1", "tasks:", time.Minute, &mockLogger{})
	defer m.Stop(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Equal(t, "cache", m.Name())
	assert.NotNil(t, m.TaskList())

	status := m.Health(ctx)
	assert.False(t, status.Healthy)
	assert.Contains(t, status.Message, "redis ping failed")
	assert.Error(t, m.Start(ctx))
}

func TestModule_HealthWithRedis(t *testing.T) {
	list := setupTestList(t)
	m := &Module{list: list, redisAddr: testRedisAddr, logger: &mockLogger{}}

	status := m.Health(context.Background())
	assert.True(t, status.Healthy)
	assert.Contains(t, status.Details, "stale_skips")
}
