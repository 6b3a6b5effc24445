package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/Tsiatosika/Todo-project/events"
)

// DefaultCapacity bounds the in-memory activity feed.
const DefaultCapacity = 100

// Entry kinds recorded in the feed.
const (
	KindCreated = "task_created"
	KindUpdated = "task_updated"
	KindToggled = "task_toggled"
	KindDeleted = "task_deleted"
)

// Entry is one recorded task event.
type Entry struct {
	TaskID    string    `json:"task_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Module keeps a bounded feed of task activity.
// It subscribes to task events using the EventConsumerModule interface.
type Module struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the activity module. A non-positive capacity uses DefaultCapacity.
func NewModule(capacity int, logger types.Logger) *Module {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Module{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "activity"
}

// RegisterEventConsumers subscribes to the task events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", []string{"TaskCreated", "TaskUpdated", "TaskDeleted"})
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(Entry{
		TaskID:    event.TaskID,
		Kind:      KindCreated,
		Message:   fmt.Sprintf("Task %q created", event.Name),
		Timestamp: event.CreatedAt,
	})
	return nil
}

func (m *Module) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	entry := Entry{
		TaskID:    event.TaskID,
		Kind:      KindUpdated,
		Message:   fmt.Sprintf("Task %q updated", event.Name),
		Timestamp: event.UpdatedAt,
	}
	if event.StatusChanged() {
		entry.Kind = KindToggled
		entry.Message = fmt.Sprintf("Task %q marked %s", event.Name, event.Status)
	}
	m.record(entry)
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(Entry{
		TaskID:    event.TaskID,
		Kind:      KindDeleted,
		Message:   fmt.Sprintf("Task %q deleted", event.Name),
		Timestamp: event.DeletedAt,
	})
	return nil
}

func (m *Module) record(entry Entry) {
	m.logger.Debug("Task activity", "kind", entry.Kind, "task_id", entry.TaskID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == m.capacity {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, entry)
}

// Entries returns a copy of the feed, oldest first.
func (m *Module) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Entry, len(m.entries))
	copy(result, m.entries)
	return result
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Activity module started, listening for task events")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Activity module stopped", "entries", len(m.Entries()))
	return nil
}

// Health reports the size of the feed.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"entries":  len(m.entries),
			"capacity": m.capacity,
		},
	}
}
