// Package sqlstore persists tasks in SQLite through GORM.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tsiatosika/Todo-project/domain/task"
)

// taskRecord is the table layout for a task.
type taskRecord struct {
	ID          string    `gorm:"primarykey;size:36"`
	Name        string    `gorm:"size:500;not null"`
	Description string    `gorm:"size:4000;not null;default:''"`
	Status      string    `gorm:"size:16;not null;default:'pending'"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

// TableName returns the table name for task records.
func (taskRecord) TableName() string {
	return "tasks"
}

// Store implements task.Repository on top of a GORM connection.
type Store struct {
	db *gorm.DB
}

var _ task.Repository = (*Store)(nil)

// Open connects to the SQLite database at path and migrates the tasks table.
// Use ":memory:" for a throwaway database.
func Open(path string, debug bool) (*Store, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared across calls.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	return New(db)
}

// New wraps an existing GORM connection and runs the auto-migration.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert saves a new task.
func (s *Store) Insert(ctx context.Context, t *task.Task) error {
	rec := toRecord(t)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return task.StoreFailure("insert task", err)
	}
	return nil
}

// FindAll returns all tasks, newest first.
func (s *Store) FindAll(ctx context.Context) ([]task.Task, error) {
	var records []taskRecord
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, task.StoreFailure("list tasks", err)
	}

	tasks := make([]task.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, rec.toTask())
	}
	task.SortNewestFirst(tasks)
	return tasks, nil
}

// FindByID retrieves a task by its ID.
func (s *Store) FindByID(ctx context.Context, id string) (*task.Task, error) {
	var rec taskRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.NotFound(id)
		}
		return nil, task.StoreFailure("find task", err)
	}
	t := rec.toTask()
	return &t, nil
}

// Replace overwrites every mutable column of an existing task.
func (s *Store) Replace(ctx context.Context, t *task.Task) error {
	result := s.db.WithContext(ctx).Model(&taskRecord{}).Where("id = ?", t.ID).Updates(map[string]any{
		"name":        t.Name,
		"description": t.Description,
		"status":      t.Status.String(),
	})
	if err := result.Error; err != nil {
		return task.StoreFailure("replace task", err)
	}
	if result.RowsAffected == 0 {
		return task.NotFound(t.ID)
	}
	return nil
}

// Remove deletes a task and returns the deleted row.
func (s *Store) Remove(ctx context.Context, id string) (*task.Task, error) {
	var removed *task.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec taskRecord
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&taskRecord{}, "id = ?", id).Error; err != nil {
			return err
		}
		t := rec.toTask()
		removed = &t
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.NotFound(id)
		}
		return nil, task.StoreFailure("remove task", err)
	}
	return removed, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func toRecord(t *task.Task) taskRecord {
	return taskRecord{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Status:      t.Status.String(),
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

func (r taskRecord) toTask() task.Task {
	// Rows are only written through toRecord, so the status always parses.
	status, _ := task.ParseStatus(r.Status)
	return task.Task{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      status,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}
