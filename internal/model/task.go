package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStore defines persistence operations for tasks. Every lookup is scoped
// by owner: a task that exists but belongs to someone else is ErrNotFound.
type TaskStore interface {
	Create(ctx context.Context, task Task) (Task, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (Task, error)
	List(ctx context.Context, filter TaskFilter) ([]Task, int, error)
	Update(ctx context.Context, task Task) (Task, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// TaskStatus enumerates task states.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Next returns the status a toggle moves to.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case TaskStatusPending:
		return TaskStatusInProgress
	case TaskStatusInProgress:
		return TaskStatusCompleted
	default:
		return TaskStatusPending
	}
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uuid.UUID
	Title       string
	Description *string
	Status      TaskStatus
	UserID      uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskFilter selects one page of a user's tasks.
type TaskFilter struct {
	UserID uuid.UUID
	Status TaskStatus
	Search string
	Limit  int
	Offset int
}

// TaskPage is a page of tasks with pagination metadata.
type TaskPage struct {
	Tasks      []Task
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// CreateTaskParams carries the fields a client may set on a new task.
// An empty Status means PENDING.
type CreateTaskParams struct {
	Title       string
	Description *string
	Status      TaskStatus
}

// UpdateTaskParams is a partial update; nil fields are left unchanged.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *TaskStatus
}

// ListTasksParams selects a page of tasks. Zero Page and Limit take defaults.
type ListTasksParams struct {
	Page   int
	Limit  int
	Status TaskStatus
	Search string
}
