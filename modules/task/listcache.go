package task

import (
	"context"

	domain "github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/modules/cache"
)

// ListCache holds the most recent full task list.
//
// SetList must drop tasks when generation is older than the latest
// Invalidate, so a list read before a write never outlives the write.
type ListCache interface {
	Generation(ctx context.Context) (uint64, error)
	GetList(ctx context.Context) ([]domain.Task, bool, error)
	SetList(ctx context.Context, generation uint64, tasks []domain.Task) error
	Invalidate(ctx context.Context) error
}

var _ ListCache = (*cache.TaskList)(nil)

// NewRedisListCache uses the Redis task list as the service's list cache.
func NewRedisListCache(c *cache.TaskList) ListCache {
	return c
}
