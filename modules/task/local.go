package task

import (
	"context"
	"errors"

	domain "github.com/Tsiatosika/Todo-project/domain/task"
)

var errEmptyReply = errors.New("reply carries neither task nor error")

// localPort serves TaskPort by calling the service in-process.
type localPort struct {
	service *Service
}

// NewLocalPort returns a TaskPort that skips the request-reply hop.
func NewLocalPort(service *Service) TaskPort {
	return &localPort{service: service}
}

func (p *localPort) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return p.service.ListTasks(ctx)
}

func (p *localPort) CreateTask(ctx context.Context, req *CreateTaskRequest) (*domain.Task, error) {
	return p.service.CreateTask(ctx, *req)
}

func (p *localPort) UpdateTask(ctx context.Context, taskID string, fields domain.Fields) (*domain.Task, error) {
	updated, _, err := p.service.UpdateTask(ctx, taskID, fields)
	return updated, err
}

func (p *localPort) DeleteTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return p.service.DeleteTask(ctx, taskID)
}
