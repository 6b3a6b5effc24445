package task

import (
	"context"
	"slices"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/singleflight"

	domain "github.com/Tsiatosika/Todo-project/domain/task"
)

// Service implements the task use cases on top of a repository.
type Service struct {
	repo    domain.Repository
	cache   ListCache
	sfGroup singleflight.Group // collapses concurrent list reads
	now     func() time.Time
	logger  types.Logger
}

// NewService creates a task service. cache may be nil.
func NewService(repo domain.Repository, cache ListCache, logger types.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		now:    time.Now,
		logger: logger,
	}
}

// listFlight is the singleflight key for store list reads.
const listFlight = "list"

// ListTasks returns every task, newest first, using the cache-aside path when a cache is set.
// The cache generation is read before the store so a concurrent write
// keeps this result out of the cache.
func (s *Service) ListTasks(ctx context.Context) ([]domain.Task, error) {
	generation, cacheable := s.cachedGeneration(ctx)
	if cacheable {
		tasks, found, err := s.cache.GetList(ctx)
		if err != nil {
			s.logger.Warn("List cache read failed", "error", err)
		}
		if found {
			return tasks, nil
		}
	}

	val, err, _ := s.sfGroup.Do(listFlight, func() (any, error) {
		return s.repo.FindAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	tasks := slices.Clone(val.([]domain.Task))
	if tasks == nil {
		tasks = []domain.Task{}
	}

	if cacheable {
		if err := s.cache.SetList(ctx, generation, tasks); err != nil {
			s.logger.Warn("List cache write failed", "error", err)
		}
	}
	return tasks, nil
}

// cachedGeneration reports the cache generation, or false when the
// cache is off or unreadable.
func (s *Service) cachedGeneration(ctx context.Context) (uint64, bool) {
	if s.cache == nil {
		return 0, false
	}
	generation, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("List cache generation read failed", "error", err)
		return 0, false
	}
	return generation, true
}

// CreateTask validates and inserts a new task.
func (s *Service) CreateTask(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	// Millisecond precision survives every backend unchanged.
	created, err := domain.New(req.Name, req.Description, req.Status, s.now().Truncate(time.Millisecond))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, created); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	return created, nil
}

// UpdateTask applies fields to an existing task and returns it with its previous status.
func (s *Service) UpdateTask(ctx context.Context, taskID string, fields domain.Fields) (*domain.Task, domain.Status, error) {
	if _, err := domain.ParseID(taskID); err != nil {
		return nil, domain.StatusPending, err
	}

	current, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, domain.StatusPending, err
	}
	previous := current.Status

	if err := current.Apply(fields); err != nil {
		return nil, previous, err
	}
	if err := s.repo.Replace(ctx, current); err != nil {
		return nil, previous, err
	}
	s.invalidate(ctx)

	return current, previous, nil
}

// DeleteTask removes a task and returns its prior value.
func (s *Service) DeleteTask(ctx context.Context, taskID string) (*domain.Task, error) {
	if _, err := domain.ParseID(taskID); err != nil {
		return nil, err
	}

	removed, err := s.repo.Remove(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	return removed, nil
}

// invalidate runs after every successful write. List reads that start
// later get their own flight and see the write.
func (s *Service) invalidate(ctx context.Context) {
	s.sfGroup.Forget(listFlight)
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("List cache invalidation failed", "error", err)
	}
}
