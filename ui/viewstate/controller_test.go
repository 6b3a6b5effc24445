package viewstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/ui/listview"
)

var errOffline = errors.New("connection refused")

// fakeClient is an in-memory TaskClient with switchable failures.
type fakeClient struct {
	mu         sync.Mutex
	tasks      map[string]task.Task
	clock      time.Time
	failFetch  bool
	failWrites bool
	removeHook func()
	calls      []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		tasks: make(map[string]task.Task),
		clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeClient) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeClient) FetchAll(_ context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("fetch")
	if f.failFetch {
		return nil, errOffline
	}
	out := make([]task.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	task.SortNewestFirst(out)
	return out, nil
}

func (f *fakeClient) Create(_ context.Context, fields task.Fields) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	if f.failWrites {
		return nil, errOffline
	}
	f.clock = f.clock.Add(time.Minute)
	created, err := task.New(*fields.Name, *fields.Description, fields.Status, f.clock)
	if err != nil {
		return nil, err
	}
	f.tasks[created.ID] = *created
	return created, nil
}

func (f *fakeClient) Update(_ context.Context, id string, fields task.Fields) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update")
	if f.failWrites {
		return nil, errOffline
	}
	current, ok := f.tasks[id]
	if !ok {
		return nil, task.NotFound(id)
	}
	if err := current.Apply(fields); err != nil {
		return nil, err
	}
	f.tasks[id] = current
	return &current, nil
}

func (f *fakeClient) Remove(_ context.Context, id string) (*task.Task, error) {
	if f.removeHook != nil {
		f.removeHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("remove")
	if f.failWrites {
		return nil, errOffline
	}
	removed, ok := f.tasks[id]
	if !ok {
		return nil, task.NotFound(id)
	}
	delete(f.tasks, id)
	return &removed, nil
}

func (f *fakeClient) seed(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := f.Create(context.Background(), Input{Name: name}.fields())
		require.NoError(t, err)
	}
	f.calls = nil
}

func TestController_Refresh(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	fc.seed(t, "A", "B")
	c := NewController(fc)

	require.NoError(t, c.Refresh(ctx))
	s := c.Snapshot()
	assert.False(t, s.Loading)
	require.Len(t, s.Tasks, 2)
	assert.Equal(t, "B", s.Tasks[0].Name)
	assert.Nil(t, s.Notification)
}

func TestController_RefreshFailureKeepsList(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	fc.seed(t, "A")
	c := NewController(fc)
	require.NoError(t, c.Refresh(ctx))

	fc.failFetch = true
	require.ErrorIs(t, c.Refresh(ctx), errOffline)

	s := c.Snapshot()
	assert.False(t, s.Loading)
	assert.Len(t, s.Tasks, 1)
	require.NotNil(t, s.Notification)
	assert.Equal(t, NotifyError, s.Notification.Kind)
	assert.Equal(t, MsgLoadFailed, s.Notification.Message)
}

func TestController_BuyMilkScenario(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	fc.seed(t, "Walk dog")
	c := NewController(fc)
	require.NoError(t, c.Refresh(ctx))

	c.StartCreate()
	require.True(t, c.Snapshot().FormOpen)

	require.NoError(t, c.Create(ctx, Input{Name: "  Buy milk  "}))
	s := c.Snapshot()
	assert.False(t, s.FormOpen)
	require.Len(t, s.Tasks, 2)
	assert.Equal(t, MsgCreated, s.Notification.Message)

	milk := s.Tasks[0]
	assert.Equal(t, "Buy milk", milk.Name)
	assert.Equal(t, task.StatusPending, milk.Status)

	require.NoError(t, c.Toggle(ctx, milk))
	s = c.Snapshot()
	assert.Equal(t, MsgUpdated, s.Notification.Message)

	rows := s.View().Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Walk dog", rows[0].Name, "pending sorts above done")
	assert.Equal(t, "Buy milk", rows[1].Name)
	assert.Equal(t, task.StatusDone, rows[1].Status)

	require.NoError(t, c.Remove(ctx, milk.ID))
	s = c.Snapshot()
	require.Len(t, s.Tasks, 1)
	assert.Equal(t, "Walk dog", s.Tasks[0].Name)
	assert.Equal(t, MsgDeleted, s.Notification.Message)

	tasks, err := fc.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestController_WriteFailures(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	fc.seed(t, "A")
	c := NewController(fc)
	require.NoError(t, c.Refresh(ctx))
	before := c.Snapshot().Tasks

	fc.failWrites = true
	c.StartEdit(before[0])

	tests := []struct {
		name string
		run  func() error
		msg  string
	}{
		{"create", func() error { return c.Create(ctx, Input{Name: "B"}) }, MsgCreateFailed},
		{"update", func() error { return c.Update(ctx, before[0].ID, Input{Name: "A2"}) }, MsgUpdateFailed},
		{"toggle", func() error { return c.Toggle(ctx, before[0]) }, MsgUpdateFailed},
		{"remove", func() error { return c.Remove(ctx, before[0].ID) }, MsgDeleteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.run(), errOffline)
			s := c.Snapshot()
			assert.Equal(t, before, s.Tasks)
			assert.True(t, s.FormOpen, "form stays open on failure")
			require.NotNil(t, s.Notification)
			assert.Equal(t, NotifyError, s.Notification.Kind)
			assert.Equal(t, tt.msg, s.Notification.Message)
		})
	}
}

func TestController_BlankNameNeverReachesServer(t *testing.T) {
	fc := newFakeClient()
	c := NewController(fc)

	err := c.Create(context.Background(), Input{Name: "   "})
	assert.ErrorIs(t, err, task.ErrValidation)
	assert.Empty(t, fc.calls)
	assert.Equal(t, MsgNameRequired, c.Snapshot().Notification.Message)
}

func TestController_RemoveIsPessimisticByDefault(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	fc.seed(t, "A")
	c := NewController(fc)
	require.NoError(t, c.Refresh(ctx))
	id := c.Snapshot().Tasks[0].ID

	var during []task.Task
	fc.removeHook = func() { during = c.Snapshot().Tasks }

	require.NoError(t, c.Remove(ctx, id))
	assert.Len(t, during, 1, "row stays until the server confirms")
	assert.Empty(t, c.Snapshot().Tasks)
}

func TestController_OptimisticRemove(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	fc.seed(t, "A")
	c := NewController(fc, WithOptimisticDelete())
	require.NoError(t, c.Refresh(ctx))
	id := c.Snapshot().Tasks[0].ID

	var during []task.Task
	fc.removeHook = func() { during = c.Snapshot().Tasks }

	t.Run("failure refetches", func(t *testing.T) {
		fc.failWrites = true
		require.Error(t, c.Remove(ctx, id))
		assert.Empty(t, during, "row removed before the server answers")

		s := c.Snapshot()
		require.Len(t, s.Tasks, 1, "refetch restores the row")
		assert.Equal(t, MsgDeleteFailed, s.Notification.Message)
	})

	t.Run("success", func(t *testing.T) {
		fc.failWrites = false
		require.NoError(t, c.Remove(ctx, id))
		assert.Empty(t, c.Snapshot().Tasks)
	})
}

func TestController_RemoveUnknown(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	c := NewController(fc)

	err := c.Remove(ctx, uuid.NewString())
	assert.ErrorIs(t, err, task.ErrNotFound)
	assert.Equal(t, NotifyError, c.Snapshot().Notification.Kind)
}

func TestController_DismissOnlyCurrent(t *testing.T) {
	c := NewController(newFakeClient())

	c.dispatch(Notify{Kind: NotifySuccess, Message: "first"})
	first := c.Snapshot().Notification.Seq
	c.dispatch(Notify{Kind: NotifyError, Message: "second"})
	second := c.Snapshot().Notification.Seq
	assert.Greater(t, second, first)

	c.Dismiss(first)
	require.NotNil(t, c.Snapshot().Notification, "stale timer ignored")
	assert.Equal(t, "second", c.Snapshot().Notification.Message)

	c.Dismiss(second)
	assert.Nil(t, c.Snapshot().Notification)
}

func TestController_FilterSortAndForm(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	fc.seed(t, "B", "A", "C")
	c := NewController(fc)
	require.NoError(t, c.Refresh(ctx))

	for _, tk := range c.Snapshot().Tasks {
		if tk.Name != "C" {
			require.NoError(t, c.Toggle(ctx, tk))
		}
	}

	c.SetFilter(listview.FilterDone)
	c.SetSort(listview.SortByName)

	v := c.Snapshot().View()
	require.Len(t, v.Rows, 2)
	assert.Equal(t, "A", v.Rows[0].Name)
	assert.Equal(t, "B", v.Rows[1].Name)
	assert.Equal(t, listview.Counts{Total: 3, Pending: 1, Done: 2}, v.Counts)

	target := v.Rows[0]
	c.StartEdit(target)
	s := c.Snapshot()
	assert.True(t, s.FormOpen)
	require.NotNil(t, s.Editing)
	assert.Equal(t, target.ID, s.Editing.ID)

	c.CancelEdit()
	s = c.Snapshot()
	assert.False(t, s.FormOpen)
	assert.Nil(t, s.Editing)
}

func TestSnapshotIsIsolated(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	fc.seed(t, "A")
	c := NewController(fc)
	require.NoError(t, c.Refresh(ctx))

	s := c.Snapshot()
	s.Tasks[0].Name = "mutated"
	assert.Equal(t, "A", c.Snapshot().Tasks[0].Name)
}
