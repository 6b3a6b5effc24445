package task

import (
	"context"
	"testing"

	"github.com/go-monolith/mono"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/Tsiatosika/Todo-project/domain/task"
)

// dependentModule receives the task module's service container the way
// the API module does.
type dependentModule struct {
	container mono.ServiceContainer
}

var _ mono.DependentModule = (*dependentModule)(nil)

func (d *dependentModule) Name() string                  { return "task-client" }
func (d *dependentModule) Dependencies() []string        { return []string{"task"} }
func (d *dependentModule) Start(_ context.Context) error { return nil }
func (d *dependentModule) Stop(_ context.Context) error  { return nil }
func (d *dependentModule) SetDependencyServiceContainer(_ string, container mono.ServiceContainer) {
	d.container = container
}

// startAdapter runs the task module inside a mono application and
// returns a TaskPort that goes through request-reply.
func startAdapter(t *testing.T) TaskPort {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError), // Suppress logs in tests
	)
	require.NoError(t, err)

	taskModule := NewModule(Config{StoreURL: "sqlite://:memory:"}, newMockLogger(), WithRepository(newTestRepo(t)))
	client := &dependentModule{}
	app.Register(taskModule)
	app.Register(client)

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	require.NotNil(t, client.container)
	return NewTaskAdapter(client.container)
}

func TestTaskAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	port := startAdapter(t)

	tasks, err := port.ListTasks(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	created, err := port.CreateTask(ctx, &CreateTaskRequest{Name: "Buy milk", Description: "2L"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Status)

	done := domain.StatusDone
	updated, err := port.UpdateTask(ctx, created.ID, domain.Fields{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, updated.Status)
	assert.Equal(t, "2L", updated.Description)

	tasks, err = port.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
	assert.True(t, created.CreatedAt.Equal(tasks[0].CreatedAt))

	removed, err := port.DeleteTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)
}

func TestTaskAdapter_ErrorCodesSurviveTheHop(t *testing.T) {
	ctx := context.Background()
	port := startAdapter(t)
	absent := "6f1c2b1e-4a8b-4c55-9d0b-2f3f3d5b9a01"

	_, err := port.CreateTask(ctx, &CreateTaskRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = port.DeleteTask(ctx, absent)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = port.DeleteTask(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = port.UpdateTask(ctx, absent, domain.Fields{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := port.CreateTask(ctx, &CreateTaskRequest{Name: "Buy milk"})
	require.NoError(t, err)
	blank := ""
	_, err = port.UpdateTask(ctx, created.ID, domain.Fields{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.CodeValidation, domain.Code(err))
}
