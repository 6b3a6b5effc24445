package task

import (
	"context"

	domain "github.com/Tsiatosika/Todo-project/domain/task"
)

// Service names registered in the task module's container.
const (
	ServiceCreateTask = "create-task"
	ServiceListTasks  = "list-tasks"
	ServiceUpdateTask = "update-task"
	ServiceDeleteTask = "delete-task"
)

// ServiceError carries a domain error across the request-reply boundary.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Err converts the envelope back into a domain error.
func (e *ServiceError) Err() error {
	if e == nil {
		return nil
	}
	return domain.FromCode(e.Code, e.Message)
}

func toServiceError(err error) *ServiceError {
	return &ServiceError{Code: domain.Code(err), Message: err.Error()}
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      *domain.Status `json:"status,omitempty"`
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct{}

// UpdateTaskRequest is the request for updating a task.
type UpdateTaskRequest struct {
	TaskID string        `json:"task_id"`
	Fields domain.Fields `json:"fields"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID string `json:"task_id"`
}

// TaskResponse is the response for a single-task operation.
type TaskResponse struct {
	Task  *domain.Task  `json:"task,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
	Error *ServiceError `json:"error,omitempty"`
}

// TaskPort defines the interface for task operations (hexagonal port).
// Driving adapters such as the HTTP API use it to reach the core domain.
type TaskPort interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error)
	UpdateTask(ctx context.Context, taskID string, fields domain.Fields) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID string) (*domain.Task, error)
}
