package task

import (
	"context"
	"time"

	"github.com/go-monolith/mono"

	domain "github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/events"
)

// createTask handles the create-task request-reply service.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	created, err := m.service.CreateTask(ctx, req)
	if err != nil {
		return TaskResponse{Error: toServiceError(err)}, nil
	}

	m.publish(func(bus mono.EventBus) error {
		return events.TaskCreatedV1.Publish(bus, events.TaskCreatedEvent{
			TaskID:    created.ID,
			Name:      created.Name,
			Status:    created.Status.String(),
			CreatedAt: created.CreatedAt,
		}, nil)
	}, "TaskCreated")

	return TaskResponse{Task: created}, nil
}

// listTasks handles the list-tasks request-reply service.
func (m *TaskModule) listTasks(ctx context.Context, _ ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.ListTasks(ctx)
	if err != nil {
		return ListTasksResponse{Tasks: []domain.Task{}, Error: toServiceError(err)}, nil
	}
	return ListTasksResponse{Tasks: tasks, Total: len(tasks)}, nil
}

// updateTask handles the update-task request-reply service.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	updated, previous, err := m.service.UpdateTask(ctx, req.TaskID, req.Fields)
	if err != nil {
		return TaskResponse{Error: toServiceError(err)}, nil
	}

	m.publish(func(bus mono.EventBus) error {
		return events.TaskUpdatedV1.Publish(bus, events.TaskUpdatedEvent{
			TaskID:         updated.ID,
			Name:           updated.Name,
			PreviousStatus: previous.String(),
			Status:         updated.Status.String(),
			UpdatedAt:      time.Now().UTC(),
		}, nil)
	}, "TaskUpdated")

	return TaskResponse{Task: updated}, nil
}

// deleteTask handles the delete-task request-reply service.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	removed, err := m.service.DeleteTask(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{Error: toServiceError(err)}, nil
	}

	m.publish(func(bus mono.EventBus) error {
		return events.TaskDeletedV1.Publish(bus, events.TaskDeletedEvent{
			TaskID:    removed.ID,
			Name:      removed.Name,
			DeletedAt: time.Now().UTC(),
		}, nil)
	}, "TaskDeleted")

	return TaskResponse{Task: removed}, nil
}

// publish emits an event best-effort; the write has already succeeded.
func (m *TaskModule) publish(send func(mono.EventBus) error, name string) {
	if m.eventBus == nil {
		return
	}
	if err := send(m.eventBus); err != nil {
		m.logger.Warn("Failed to publish event", "event", name, "error", err)
	}
}
