package api

import (
	domain "github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/modules/activity"
)

// CreateTaskRequest is the HTTP request body for creating a task.
type CreateTaskRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      *domain.Status `json:"status,omitempty"`
}

// UpdateTaskRequest is the HTTP request body for updating a task.
// id and createdAt are accepted for round-tripping full tasks and ignored.
type UpdateTaskRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *domain.Status `json:"status,omitempty"`
}

// CreateTaskResponse is the HTTP response body for a created task.
type CreateTaskResponse struct {
	InsertedID string       `json:"insertedId"`
	Task       *domain.Task `json:"task"`
}

// DeleteTaskResponse is the HTTP response body for a deleted task.
type DeleteTaskResponse struct {
	Message     string       `json:"message"`
	DeletedTask *domain.Task `json:"deletedTask"`
}

// IndexResponse describes the API at GET /.
type IndexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ActivityResponse lists recent task activity, newest first.
type ActivityResponse struct {
	Entries []activity.Entry `json:"entries"`
	Total   int              `json:"total"`
}
