package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/taskboard-server/internal/apperrors"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Task implements task use cases for the authenticated user. Callers pass the
// user id resolved by the auth guard; it is never taken from client input.
type Task struct {
	store  model.TaskStore
	logger *logger.Logger
}

func NewTask(store model.TaskStore, logger *logger.Logger) *Task {
	return &Task{
		store:  store,
		logger: logger,
	}
}

func (s *Task) List(ctx context.Context, userID uuid.UUID, params model.ListTasksParams) (model.TaskPage, error) {
	page := params.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	tasks, total, err := s.store.List(ctx, model.TaskFilter{
		UserID: userID,
		Status: params.Status,
		Search: strings.TrimSpace(params.Search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		s.logger.Error("Task service: failed to list tasks",
			"user_id", userID,
			"error", err.Error())
		return model.TaskPage{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	return model.TaskPage{
		Tasks:      tasks,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *Task) Create(ctx context.Context, userID uuid.UUID, params model.CreateTaskParams) (model.Task, error) {
	status := params.Status
	if status == "" {
		status = model.TaskStatusPending
	}
	if !status.Valid() {
		return model.Task{}, apperrors.NewErrValidation("Invalid task status")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return model.Task{}, apperrors.NewErrValidation("Title is required")
	}

	now := time.Now().UTC()
	task, err := s.store.Create(ctx, model.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: emptyToNil(params.Description),
		Status:      status,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error("Task service: failed to create task",
			"user_id", userID,
			"error", err.Error())
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Debug("Task service: task created",
		"user_id", userID,
		"task_id", task.ID)

	return task, nil
}

func (s *Task) Get(ctx context.Context, id, userID uuid.UUID) (model.Task, error) {
	task, err := s.store.GetByID(ctx, id, userID)
	if err != nil {
		return model.Task{}, s.storeError("get", id, userID, err)
	}
	return task, nil
}

// Update applies a partial update. An empty description clears it.
func (s *Task) Update(ctx context.Context, id, userID uuid.UUID, params model.UpdateTaskParams) (model.Task, error) {
	if params.Status != nil && !params.Status.Valid() {
		return model.Task{}, apperrors.NewErrValidation("Invalid task status")
	}
	if params.Title != nil && strings.TrimSpace(*params.Title) == "" {
		return model.Task{}, apperrors.NewErrValidation("Title is required")
	}

	task, err := s.store.GetByID(ctx, id, userID)
	if err != nil {
		return model.Task{}, s.storeError("get", id, userID, err)
	}

	if params.Title != nil {
		task.Title = strings.TrimSpace(*params.Title)
	}
	if params.Description != nil {
		task.Description = emptyToNil(params.Description)
	}
	if params.Status != nil {
		task.Status = *params.Status
	}

	updated, err := s.store.Update(ctx, task)
	if err != nil {
		return model.Task{}, s.storeError("update", id, userID, err)
	}
	return updated, nil
}

func (s *Task) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.store.Delete(ctx, id, userID); err != nil {
		return s.storeError("delete", id, userID, err)
	}
	return nil
}

// Toggle advances the task status PENDING -> IN_PROGRESS -> COMPLETED -> PENDING.
func (s *Task) Toggle(ctx context.Context, id, userID uuid.UUID) (model.Task, error) {
	task, err := s.store.GetByID(ctx, id, userID)
	if err != nil {
		return model.Task{}, s.storeError("get", id, userID, err)
	}

	task.Status = task.Status.Next()

	updated, err := s.store.Update(ctx, task)
	if err != nil {
		return model.Task{}, s.storeError("toggle", id, userID, err)
	}
	return updated, nil
}

func (s *Task) storeError(op string, id, userID uuid.UUID, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NewErrTaskNotFound()
	}
	s.logger.Error("Task service: failed to "+op+" task",
		"user_id", userID,
		"task_id", id,
		"error", err.Error())
	return fmt.Errorf("failed to %s task: %w", op, err)
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
