// Package storagetest holds the behaviour every task.Repository backend must share.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsiatosika/Todo-project/domain/task"
)

// Factory returns an empty repository. The suite closes it.
type Factory func(t *testing.T) task.Repository

// Run exercises the repository contract against a backend.
func Run(t *testing.T, newRepo Factory) {
	t.Run("InsertAndFind", func(t *testing.T) { testInsertAndFind(t, newRepo(t)) })
	t.Run("FindAllOrder", func(t *testing.T) { testFindAllOrder(t, newRepo(t)) })
	t.Run("FindMissing", func(t *testing.T) { testFindMissing(t, newRepo(t)) })
	t.Run("Replace", func(t *testing.T) { testReplace(t, newRepo(t)) })
	t.Run("Remove", func(t *testing.T) { testRemove(t, newRepo(t)) })
	t.Run("Ping", func(t *testing.T) { testPing(t, newRepo(t)) })
}

// NewTask builds a valid task created at the given offset from a fixed epoch.
func NewTask(t *testing.T, name string, offset time.Duration) *task.Task {
	t.Helper()
	epoch := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tk, err := task.New(name, name+" description", nil, epoch.Add(offset))
	require.NoError(t, err)
	return tk
}

func testInsertAndFind(t *testing.T, repo task.Repository) {
	defer repo.Close()
	ctx := context.Background()

	created := NewTask(t, "Buy milk", 0)
	require.NoError(t, repo.Insert(ctx, created))

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assertSameTask(t, *created, *found)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assertSameTask(t, *created, all[0])
}

func testFindAllOrder(t *testing.T, repo task.Repository) {
	defer repo.Close()
	ctx := context.Background()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	oldest := NewTask(t, "oldest", 0)
	newest := NewTask(t, "newest", 2*time.Hour)
	middle := NewTask(t, "middle", time.Hour)
	for _, tk := range []*task.Task{oldest, newest, middle} {
		require.NoError(t, repo.Insert(ctx, tk))
	}

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"newest", "middle", "oldest"}, names(all))
}

func testFindMissing(t *testing.T, repo task.Repository) {
	defer repo.Close()

	_, err := repo.FindByID(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, task.ErrNotFound), "got %v", err)
}

func testReplace(t *testing.T, repo task.Repository) {
	defer repo.Close()
	ctx := context.Background()

	tk := NewTask(t, "Buy milk", 0)
	require.NoError(t, repo.Insert(ctx, tk))

	tk.Name = "Buy oat milk"
	tk.Description = ""
	tk.Status = task.StatusDone
	require.NoError(t, repo.Replace(ctx, tk))

	found, err := repo.FindByID(ctx, tk.ID)
	require.NoError(t, err)
	assertSameTask(t, *tk, *found)

	missing := NewTask(t, "ghost", 0)
	err = repo.Replace(ctx, missing)
	assert.True(t, errors.Is(err, task.ErrNotFound), "got %v", err)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testRemove(t *testing.T, repo task.Repository) {
	defer repo.Close()
	ctx := context.Background()

	keep := NewTask(t, "keep", 0)
	drop := NewTask(t, "drop", time.Minute)
	require.NoError(t, repo.Insert(ctx, keep))
	require.NoError(t, repo.Insert(ctx, drop))

	removed, err := repo.Remove(ctx, drop.ID)
	require.NoError(t, err)
	assertSameTask(t, *drop, *removed)

	_, err = repo.Remove(ctx, drop.ID)
	assert.True(t, errors.Is(err, task.ErrNotFound), "got %v", err)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, names(all))
}

func testPing(t *testing.T, repo task.Repository) {
	defer repo.Close()
	assert.NoError(t, repo.Ping(context.Background()))
}

func assertSameTask(t *testing.T, want, got task.Task) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Status, got.Status)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %s != %s", want.CreatedAt, got.CreatedAt)
}

func names(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		out = append(out, tk.Name)
	}
	return out
}
