package task

import "context"

// Repository is the persistence port for tasks.
//
// Implementations translate their driver's not-found condition into
// ErrNotFound and wrap every other failure with StoreFailure.
type Repository interface {
	// Insert persists a new task. ID and CreatedAt are already set.
	Insert(ctx context.Context, t *Task) error

	// FindAll returns every task ordered by CreatedAt descending.
	FindAll(ctx context.Context) ([]Task, error)

	// FindByID returns the task with the given id.
	FindByID(ctx context.Context, id string) (*Task, error)

	// Replace overwrites the stored task carrying t.ID.
	Replace(ctx context.Context, t *Task) error

	// Remove deletes the task and returns its prior value.
	Remove(ctx context.Context, id string) (*Task, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
