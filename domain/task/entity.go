package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is the core domain entity representing a todo item.
type Task struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Fields carries the mutable fields of a task. A nil field is left untouched.
type Fields struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// New builds a task with a fresh id and creation time.
// The status defaults to pending when nil.
func New(name, description string, status *Status, now time.Time) (*Task, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	st := StatusPending
	if status != nil {
		st = *status
	}

	return &Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Status:      st,
		CreatedAt:   now.UTC(),
	}, nil
}

// Apply copies the non-nil fields onto t. The task is left unchanged on error.
func (t *Task) Apply(f Fields) error {
	if f.Name != nil {
		if err := validateName(*f.Name); err != nil {
			return err
		}
	}

	if f.Name != nil {
		t.Name = *f.Name
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.Status != nil {
		t.Status = *f.Status
	}
	return nil
}

// Toggled returns the full field set that flips the task's status.
func (t Task) Toggled() Fields {
	name := t.Name
	description := t.Description
	status := t.Status.Opposite()
	return Fields{Name: &name, Description: &description, Status: &status}
}

// ParseID reports whether id is a well-formed task identifier.
func ParseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, InvalidID(id)
	}
	return parsed, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return Validation("name is required")
	}
	return nil
}
