package task

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/modules/cache"
)

// Requires Redis running on localhost:6379.
func newRedisTaskList(t *testing.T) *cache.TaskList {
	t.Helper()
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available: %v", err)
	}

	prefix := "test:listcache:" + t.Name() + ":"
	t.Cleanup(func() {
		client.Del(ctx, prefix+"list", prefix+"list:generation")
		_ = client.Close()
	})
	return cache.NewTaskList(client, prefix, time.Minute)
}

func TestService_WithRedisListCache(t *testing.T) {
	ctx := context.Background()
	tl := newRedisTaskList(t)
	svc := newTestService(t, NewRedisListCache(tl))

	_, err := svc.CreateTask(ctx, CreateTaskRequest{Name: "A"})
	require.NoError(t, err)

	first, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	second, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, uint64(1), tl.Stats().Hits)

	_, err = svc.CreateTask(ctx, CreateTaskRequest{Name: "B"})
	require.NoError(t, err)

	third, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, third, 2)
}

func TestService_RedisListReadBeforeWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	tl := newRedisTaskList(t)
	repo := newGatedRepo(newTestRepo(t))
	svc := NewService(repo, NewRedisListCache(tl), newMockLogger())

	earlier := make(chan []domain.Task, 1)
	go func() {
		tasks, _ := svc.ListTasks(ctx)
		earlier <- tasks
	}()
	<-repo.read

	_, err := svc.CreateTask(ctx, CreateTaskRequest{Name: "Buy milk"})
	require.NoError(t, err)

	close(repo.release)
	assert.Empty(t, <-earlier)
	assert.Equal(t, uint64(1), tl.Stats().StaleSkips)

	tasks, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}
