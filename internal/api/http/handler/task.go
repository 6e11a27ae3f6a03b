package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/taskboard-server/internal/api/http/response"
	"github.com/dtroode/taskboard-server/internal/apperrors"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/model"
)

// TaskService manages the tasks of a user.
type TaskService interface {
	List(ctx context.Context, userID uuid.UUID, params model.ListTasksParams) (model.TaskPage, error)
	Create(ctx context.Context, userID uuid.UUID, params model.CreateTaskParams) (model.Task, error)
	Get(ctx context.Context, id, userID uuid.UUID) (model.Task, error)
	Update(ctx context.Context, id, userID uuid.UUID, params model.UpdateTaskParams) (model.Task, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Toggle(ctx context.Context, id, userID uuid.UUID) (model.Task, error)
}

type createTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
	Status      string  `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
}

type updateTaskRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
	Status      *string `json:"status" validate:"omitnil,oneof=PENDING IN_PROGRESS COMPLETED"`
}

type listTasksQuery struct {
	Page   int    `query:"page" validate:"min=1"`
	Limit  int    `query:"limit" validate:"min=1,max=100"`
	Status string `query:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	Search string `query:"search" validate:"max=200"`
}

type taskResponse struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Status      model.TaskStatus `json:"status"`
	UserID      uuid.UUID        `json:"userId"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type paginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type taskListResponse struct {
	Tasks      []taskResponse     `json:"tasks"`
	Pagination paginationResponse `json:"pagination"`
}

func newTaskResponse(t model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Task serves /api/tasks. Every route runs behind the auth guard.
type Task struct {
	taskService    TaskService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewTask(taskService TaskService, contextManager model.ContextManager, logger *logger.Logger) *Task {
	return &Task{
		taskService:    taskService,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Task) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	query, err := parseListQuery(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	page, err := h.taskService.List(r.Context(), userID, model.ListTasksParams{
		Page:   query.Page,
		Limit:  query.Limit,
		Status: model.TaskStatus(query.Status),
		Search: query.Search,
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	tasks := make([]taskResponse, 0, len(page.Tasks))
	for _, t := range page.Tasks {
		tasks = append(tasks, newTaskResponse(t))
	}

	response.Success(w, http.StatusOK, "", taskListResponse{
		Tasks: tasks,
		Pagination: paginationResponse{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

func (h *Task) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var in createTaskRequest
	if err := decodeStrict(w, r, &in, false); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if err := validateStruct(in); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, model.CreateTaskParams{
		Title:       in.Title,
		Description: in.Description,
		Status:      model.TaskStatus(in.Status),
	})
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusCreated, "Task created successfully", newTaskResponse(task))
}

func (h *Task) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.ids(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), taskID, userID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "", newTaskResponse(task))
}

func (h *Task) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var in updateTaskRequest
	if err := decodeStrict(w, r, &in, false); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if err := validateStruct(in); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	params := model.UpdateTaskParams{
		Title:       in.Title,
		Description: in.Description,
	}
	if in.Status != nil {
		status := model.TaskStatus(*in.Status)
		params.Status = &status
	}

	task, err := h.taskService.Update(r.Context(), taskID, userID, params)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "Task updated successfully", newTaskResponse(task))
}

func (h *Task) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.ids(w, r)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), taskID, userID); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "Task deleted successfully", nil)
}

func (h *Task) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.ids(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Toggle(r.Context(), taskID, userID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, "Task status toggled successfully", newTaskResponse(task))
}

func (h *Task) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperrors.NewErrMissingAuthorizationToken())
		return uuid.Nil, false
	}
	return userID, true
}

// ids resolves the caller and the {id} path parameter. A malformed id can
// never match a task, so it answers 404 like any other unknown id.
func (h *Task) ids(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, h.logger, apperrors.NewErrTaskNotFound())
		return uuid.Nil, uuid.Nil, false
	}

	return userID, taskID, true
}

func parseListQuery(r *http.Request) (listTasksQuery, error) {
	values := r.URL.Query()
	query := listTasksQuery{
		Page:   1,
		Limit:  10,
		Status: values.Get("status"),
		Search: values.Get("search"),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"page", &query.Page},
		{"limit", &query.Limit},
	}
	for _, p := range ints {
		raw := values.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return listTasksQuery{}, apperrors.NewErrValidation(p.name + " must be an integer")
		}
		*p.dst = n
	}

	if err := validateStruct(query); err != nil {
		return listTasksQuery{}, err
	}
	return query, nil
}
