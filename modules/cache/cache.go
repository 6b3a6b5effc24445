// Package cache keeps the full task list in Redis.
//
// Writers bump a generation counter and drop the list in one transaction.
// Readers record the generation before loading from the store and only
// publish their result while that generation is still current, so a list
// read before a write can never overwrite the invalidation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Tsiatosika/Todo-project/domain/task"
)

const (
	listKey       = "list"
	generationKey = "list:generation"
)

var errGenerationMoved = errors.New("list generation moved")

// TaskList caches the newest-first task list under a single key.
type TaskList struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	hits          atomic.Uint64
	misses        atomic.Uint64
	stores        atomic.Uint64
	staleSkips    atomic.Uint64
	invalidations atomic.Uint64
	errors        atomic.Uint64
}

// Stats is a point-in-time view of the cache counters.
type Stats struct {
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	Stores        uint64  `json:"stores"`
	StaleSkips    uint64  `json:"stale_skips"`
	Invalidations uint64  `json:"invalidations"`
	Errors        uint64  `json:"errors"`
	HitRate       float64 `json:"hit_rate"`
}

// cachedList is the stored document. Generation is kept for inspection.
type cachedList struct {
	Generation uint64      `json:"generation"`
	Tasks      []task.Task `json:"tasks"`
}

// NewTaskList creates a task list cache. Keys are prefix+"list" and
// prefix+"list:generation".
func NewTaskList(client *redis.Client, prefix string, ttl time.Duration) *TaskList {
	return &TaskList{client: client, prefix: prefix, ttl: ttl}
}

func (c *TaskList) key(name string) string {
	return c.prefix + name
}

// Generation returns the current write generation. Zero means no write
// has been recorded yet.
func (c *TaskList) Generation(ctx context.Context) (uint64, error) {
	gen, err := readGeneration(ctx, c.client, c.key(generationKey))
	if err != nil {
		c.errors.Add(1)
		return 0, fmt.Errorf("read list generation: %w", err)
	}
	return gen, nil
}

// GetList returns the cached list. found is false on a miss.
func (c *TaskList) GetList(ctx context.Context) ([]task.Task, bool, error) {
	data, err := c.client.Get(ctx, c.key(listKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		c.errors.Add(1)
		return nil, false, fmt.Errorf("read task list: %w", err)
	}

	var doc cachedList
	if err := json.Unmarshal(data, &doc); err != nil {
		c.errors.Add(1)
		return nil, false, fmt.Errorf("decode task list: %w", err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}

	c.hits.Add(1)
	return doc.Tasks, true, nil
}

// SetList stores tasks if generation is still current. A list loaded
// before a newer write is silently dropped.
func (c *TaskList) SetList(ctx context.Context, generation uint64, tasks []task.Task) error {
	data, err := json.Marshal(cachedList{Generation: generation, Tasks: tasks})
	if err != nil {
		c.errors.Add(1)
		return fmt.Errorf("encode task list: %w", err)
	}

	genKey := c.key(generationKey)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if current != generation {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(listKey), data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		c.stores.Add(1)
		return nil
	case errors.Is(err, errGenerationMoved), errors.Is(err, redis.TxFailedErr):
		c.staleSkips.Add(1)
		return nil
	default:
		c.errors.Add(1)
		return fmt.Errorf("store task list: %w", err)
	}
}

// Invalidate advances the generation and drops the cached list atomically.
func (c *TaskList) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.key(generationKey))
		pipe.Del(ctx, c.key(listKey))
		return nil
	})
	if err != nil {
		c.errors.Add(1)
		return fmt.Errorf("invalidate task list: %w", err)
	}
	c.invalidations.Add(1)
	return nil
}

// Stats returns the current counters.
func (c *TaskList) Stats() Stats {
	s := Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Stores:        c.stores.Load(),
		StaleSkips:    c.staleSkips.Load(),
		Invalidations: c.invalidations.Load(),
		Errors:        c.errors.Load(),
	}
	if gets := s.Hits + s.Misses; gets > 0 {
		s.HitRate = float64(s.Hits) / float64(gets) * 100
	}
	return s
}

// Ping checks the Redis connection.
func (c *TaskList) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// getter is the read half shared by *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, r getter, key string) (uint64, error) {
	raw, err := r.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(raw, 10, 64)
}
