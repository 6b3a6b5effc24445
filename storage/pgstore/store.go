// Package pgstore persists tasks in PostgreSQL through pgx.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tsiatosika/Todo-project/domain/task"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL CHECK (name <> ''),
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'done')),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS tasks_created_at_idx ON tasks (created_at DESC);
`

const (
	insertTask = `INSERT INTO tasks (id, name, description, status, created_at) VALUES ($1, $2, $3, $4, $5)`
	selectAll  = `SELECT id::text, name, description, status, created_at FROM tasks ORDER BY created_at DESC, id ASC`
	selectOne  = `SELECT id::text, name, description, status, created_at FROM tasks WHERE id = $1`
	updateTask = `UPDATE tasks SET name = $2, description = $3, status = $4 WHERE id = $1`
	deleteTask = `DELETE FROM tasks WHERE id = $1 RETURNING id::text, name, description, status, created_at`
)

// Store implements task.Repository using a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ task.Repository = (*Store)(nil)

// Open connects to databaseURL, verifies the connection and ensures the schema exists.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Insert saves a new task.
func (s *Store) Insert(ctx context.Context, t *task.Task) error {
	if _, err := s.pool.Exec(ctx, insertTask, t.ID, t.Name, t.Description, t.Status.String(), t.CreatedAt); err != nil {
		return task.StoreFailure("insert task", err)
	}
	return nil
}

// FindAll returns all tasks, newest first.
func (s *Store) FindAll(ctx context.Context) ([]task.Task, error) {
	rows, err := s.pool.Query(ctx, selectAll)
	if err != nil {
		return nil, task.StoreFailure("list tasks", err)
	}

	tasks, err := pgx.CollectRows(rows, scanTask)
	if err != nil {
		return nil, task.StoreFailure("list tasks", err)
	}
	return tasks, nil
}

// FindByID retrieves a task by its ID.
func (s *Store) FindByID(ctx context.Context, id string) (*task.Task, error) {
	rows, err := s.pool.Query(ctx, selectOne, id)
	if err != nil {
		return nil, task.StoreFailure("find task", err)
	}
	return collectOne(rows, id, "find task")
}

// Replace overwrites the mutable columns of an existing task.
func (s *Store) Replace(ctx context.Context, t *task.Task) error {
	tag, err := s.pool.Exec(ctx, updateTask, t.ID, t.Name, t.Description, t.Status.String())
	if err != nil {
		return task.StoreFailure("replace task", err)
	}
	if tag.RowsAffected() == 0 {
		return task.NotFound(t.ID)
	}
	return nil
}

// Remove deletes a task and returns the deleted row.
func (s *Store) Remove(ctx context.Context, id string) (*task.Task, error) {
	rows, err := s.pool.Query(ctx, deleteTask, id)
	if err != nil {
		return nil, task.StoreFailure("remove task", err)
	}
	return collectOne(rows, id, "remove task")
}

// Ping checks the pool connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func collectOne(rows pgx.Rows, id, op string) (*task.Task, error) {
	t, err := pgx.CollectExactlyOneRow(rows, scanTask)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.NotFound(id)
		}
		return nil, task.StoreFailure(op, err)
	}
	return &t, nil
}

func scanTask(row pgx.CollectableRow) (task.Task, error) {
	var (
		t         task.Task
		status    string
		createdAt time.Time
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &status, &createdAt); err != nil {
		return task.Task{}, err
	}

	parsed, err := task.ParseStatus(status)
	if err != nil {
		return task.Task{}, err
	}
	t.Status = parsed
	t.CreatedAt = createdAt.UTC()
	return t, nil
}
