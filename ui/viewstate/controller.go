package viewstate

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/ui/listview"
)

// NotificationTTL is how long a notification stays visible.
const NotificationTTL = 3 * time.Second

// Notification texts.
const (
	MsgLoadFailed   = "Failed to load tasks"
	MsgCreated      = "Task created"
	MsgCreateFailed = "Failed to create task"
	MsgUpdated      = "Task updated"
	MsgUpdateFailed = "Failed to update task"
	MsgDeleted      = "Task deleted"
	MsgDeleteFailed = "Failed to delete task"
	MsgNameRequired = "Please enter a task name"
)

// TaskClient is the remote task API.
type TaskClient interface {
	FetchAll(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, fields task.Fields) (*task.Task, error)
	Update(ctx context.Context, id string, fields task.Fields) (*task.Task, error)
	Remove(ctx context.Context, id string) (*task.Task, error)
}

// Input is the content of the task form.
type Input struct {
	Name        string
	Description string
	Status      task.Status
}

// InputFrom fills the form from an existing task.
func InputFrom(t task.Task) Input {
	return Input{Name: t.Name, Description: t.Description, Status: t.Status}
}

func (in Input) fields() task.Fields {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	status := in.Status
	return task.Fields{Name: &name, Description: &description, Status: &status}
}

// Option configures a Controller.
type Option func(*Controller)

// WithOptimisticDelete removes rows before the server confirms.
// A failed delete refetches the list.
func WithOptimisticDelete() Option {
	return func(c *Controller) {
		c.optimisticDelete = true
	}
}

// Controller owns the view state. It is the only writer and is safe
// for concurrent use; network calls run outside the lock.
type Controller struct {
	mu               sync.Mutex
	state            State
	client           TaskClient
	optimisticDelete bool
}

// NewController creates a controller with an empty list.
func NewController(client TaskClient, opts ...Option) *Controller {
	c := &Controller{
		client: client,
		state:  State{Tasks: []task.Task{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) dispatch(actions ...Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range actions {
		c.state = Reduce(c.state, a)
	}
	return c.state.clone()
}

// Refresh refetches the list. On failure the previous list is kept.
func (c *Controller) Refresh(ctx context.Context) error {
	c.dispatch(RefreshStarted{})

	tasks, err := c.client.FetchAll(ctx)
	if err != nil {
		c.dispatch(RefreshFailed{}, Notify{Kind: NotifyError, Message: MsgLoadFailed})
		return err
	}
	c.dispatch(RefreshSucceeded{Tasks: tasks})
	return nil
}

// Create submits a new task, then refetches and closes the form.
func (c *Controller) Create(ctx context.Context, in Input) error {
	fields := in.fields()
	if *fields.Name == "" {
		c.dispatch(Notify{Kind: NotifyError, Message: MsgNameRequired})
		return task.Validation("name is required")
	}

	if _, err := c.client.Create(ctx, fields); err != nil {
		c.dispatch(Notify{Kind: NotifyError, Message: MsgCreateFailed})
		return err
	}
	c.dispatch(Notify{Kind: NotifySuccess, Message: MsgCreated})
	c.refreshAfterWrite(ctx)
	return nil
}

// Update replaces the task's fields, then refetches and closes the form.
func (c *Controller) Update(ctx context.Context, id string, in Input) error {
	fields := in.fields()
	if *fields.Name == "" {
		c.dispatch(Notify{Kind: NotifyError, Message: MsgNameRequired})
		return task.Validation("name is required")
	}

	if _, err := c.client.Update(ctx, id, fields); err != nil {
		c.dispatch(Notify{Kind: NotifyError, Message: MsgUpdateFailed})
		return err
	}
	c.dispatch(Notify{Kind: NotifySuccess, Message: MsgUpdated})
	c.refreshAfterWrite(ctx)
	return nil
}

// Toggle flips the task's status with a full update.
func (c *Controller) Toggle(ctx context.Context, t task.Task) error {
	in := InputFrom(t)
	in.Status = t.Status.Opposite()
	return c.Update(ctx, t.ID, in)
}

// Remove deletes a task. By default the row disappears only after the
// server confirms; see WithOptimisticDelete.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if c.optimisticDelete {
		c.dispatch(TaskRemoved{ID: id})
	}

	if _, err := c.client.Remove(ctx, id); err != nil {
		c.dispatch(Notify{Kind: NotifyError, Message: MsgDeleteFailed})
		if c.optimisticDelete {
			c.resync(ctx)
		}
		return err
	}

	c.dispatch(TaskRemoved{ID: id}, Notify{Kind: NotifySuccess, Message: MsgDeleted})
	return nil
}

// refreshAfterWrite refetches and closes the form. A failed refetch
// replaces the success notification with an error.
func (c *Controller) refreshAfterWrite(ctx context.Context) {
	_ = c.Refresh(ctx)
	c.dispatch(CloseForm{})
}

// resync refetches without touching the notification.
func (c *Controller) resync(ctx context.Context) {
	tasks, err := c.client.FetchAll(ctx)
	if err != nil {
		return
	}
	c.dispatch(RefreshSucceeded{Tasks: tasks})
}

// StartCreate opens an empty form.
func (c *Controller) StartCreate() {
	c.dispatch(OpenForm{})
}

// StartEdit opens the form on t.
func (c *Controller) StartEdit(t task.Task) {
	c.dispatch(OpenForm{Editing: &t})
}

// CancelEdit closes the form without saving.
func (c *Controller) CancelEdit() {
	c.dispatch(CloseForm{})
}

// SetFilter changes the status filter.
func (c *Controller) SetFilter(f listview.Filter) {
	c.dispatch(SetFilter{Filter: f})
}

// SetSort changes the sort key.
func (c *Controller) SetSort(s listview.SortKey) {
	c.dispatch(SetSort{Sort: s})
}

// Dismiss clears notification seq if it is still showing.
func (c *Controller) Dismiss(seq uint64) {
	c.dispatch(Dismiss{Seq: seq})
}
