package task

import (
	"context"
	"encoding/json"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/Tsiatosika/Todo-project/domain/task"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// ListTasks lists all tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var resp ListTasksResponse
	if err := callService(ctx, a.container, ServiceListTasks, &ListTasksRequest{}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error.Err()
	}
	if resp.Tasks == nil {
		return []domain.Task{}, nil
	}
	return resp.Tasks, nil
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error) {
	var resp TaskResponse
	if err := callService(ctx, a.container, ServiceCreateTask, req, &resp); err != nil {
		return nil, err
	}
	return resp.task()
}

// UpdateTask updates a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, taskID string, fields domain.Fields) (*domain.Task, error) {
	req := UpdateTaskRequest{TaskID: taskID, Fields: fields}
	var resp TaskResponse
	if err := callService(ctx, a.container, ServiceUpdateTask, &req, &resp); err != nil {
		return nil, err
	}
	return resp.task()
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, taskID string) (*domain.Task, error) {
	req := DeleteTaskRequest{TaskID: taskID}
	var resp TaskResponse
	if err := callService(ctx, a.container, ServiceDeleteTask, &req, &resp); err != nil {
		return nil, err
	}
	return resp.task()
}

// callService performs a typed request-reply call. Transport failures
// become store errors; domain errors travel inside the reply envelope.
func callService[Req, Resp any](ctx context.Context, c mono.ServiceContainer, service string, req Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		c,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return domain.StoreFailure(service+" service call", err)
	}
	return nil
}

func (r *TaskResponse) task() (*domain.Task, error) {
	if r.Error != nil {
		return nil, r.Error.Err()
	}
	if r.Task == nil {
		return nil, domain.StoreFailure("decode reply", errEmptyReply)
	}
	return r.Task, nil
}
