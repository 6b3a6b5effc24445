package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/events"
	"github.com/Tsiatosika/Todo-project/storage"
)

// Config holds the store settings of the task module.
type Config struct {
	StoreURL string
	Bucket   string
	Debug    bool
}

// Option customizes a TaskModule.
type Option func(*TaskModule)

// WithRepository uses repo instead of opening Config.StoreURL.
func WithRepository(repo domain.Repository) Option {
	return func(m *TaskModule) {
		m.repo = repo
	}
}

// WithListCache enables cache-aside reads of the task list.
func WithListCache(c ListCache) Option {
	return func(m *TaskModule) {
		m.listCache = c
	}
}

// TaskModule provides task management services (core domain).
type TaskModule struct {
	cfg       Config
	repo      domain.Repository
	listCache ListCache
	service   *Service
	eventBus  mono.EventBus
	logger    types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*TaskModule)(nil)
	_ mono.ServiceProviderModule = (*TaskModule)(nil)
	_ mono.EventEmitterModule    = (*TaskModule)(nil)
	_ mono.HealthCheckableModule = (*TaskModule)(nil)
)

// NewModule creates the task module.
func NewModule(cfg Config, logger types.Logger, opts ...Option) *TaskModule {
	m := &TaskModule{
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetEventBus receives the event bus used to publish task events.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events published by this module.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers the request-reply services of the task module.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreateTask, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListTasks, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListTasks, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateTask, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteTask, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteTask, err)
	}

	m.logger.Info("Registered services",
		"services", []string{ServiceCreateTask, ServiceListTasks, ServiceUpdateTask, ServiceDeleteTask})
	return nil
}

// Service returns the task service. It is nil until Start.
func (m *TaskModule) Service() *Service {
	return m.service
}

// Start opens the task store unless a repository was injected.
func (m *TaskModule) Start(ctx context.Context) error {
	if m.repo == nil {
		repo, err := storage.Open(ctx, m.cfg.StoreURL, storage.Options{
			Bucket: m.cfg.Bucket,
			Debug:  m.cfg.Debug,
		})
		if err != nil {
			return fmt.Errorf("failed to open task store: %w", err)
		}
		m.repo = repo
	}

	m.service = NewService(m.repo, m.listCache, m.logger)

	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, task events will not be published")
	}
	m.logger.Info("Task module started",
		"store", storage.Redact(m.cfg.StoreURL),
		"cache", m.listCache != nil)
	return nil
}

// Stop closes the task store.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.repo == nil {
		return nil
	}
	if err := m.repo.Close(); err != nil {
		return fmt.Errorf("failed to close task store: %w", err)
	}
	m.logger.Info("Task module stopped")
	return nil
}

// Health reports whether the task store answers a ping.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.repo == nil {
		return mono.HealthStatus{Healthy: false, Message: "store not opened"}
	}
	if err := m.repo.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"store": storage.Redact(m.cfg.StoreURL),
			"cache": m.listCache != nil,
		},
	}
}
