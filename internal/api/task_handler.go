package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/berkedogan/tasks-api/internal/api/shared"
	"github.com/berkedogan/tasks-api/internal/domain"
	"github.com/berkedogan/tasks-api/internal/platform/logger"
	"github.com/berkedogan/tasks-api/internal/service"
)

// TaskService is the task lifecycle engine as used by the HTTP layer.
type TaskService interface {
	List(ctx context.Context) ([]*domain.Task, error)
	Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error)
	Update(ctx context.Context, id int64, input domain.TaskInput) (*domain.Task, error)
	Complete(ctx context.Context, id int64) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
	Reset(ctx context.Context) (*service.ResetResult, error)
}

var _ TaskService = (*service.TaskService)(nil)

// TaskHandler handles task HTTP requests.
type TaskHandler struct {
	tasks  TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	response := TaskListResponse{Success: true, Tasks: make([]TaskResponse, 0, len(tasks))}
	for _, task := range tasks {
		response.Tasks = append(response.Tasks, taskToResponse(task))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.Create(r.Context(), req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, TaskEnvelope{Success: true, Task: taskToResponse(task)})
}

// UpdateTask handles PUT /api/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req TaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.tasks.Update(r.Context(), id, req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{Success: true, Task: taskToResponse(task)})
}

// ToggleTask handles POST /api/tasks/{id}/toggle.
func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.Complete(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to toggle task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskEnvelope{Success: true, Task: taskToResponse(task)})
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteTaskResponse{Success: true, ID: id})
}

// ResetTasks handles POST /api/tasks/reset.
func (h *TaskHandler) ResetTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	result, err := h.tasks.Reset(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reset tasks")
		return
	}

	subject, _ := shared.GetSubject(r.Context())
	log.Info("reset triggered", slog.String("subject", subject))
	shared.RespondWithJSON(w, r, http.StatusOK, ResetResponse{Success: true, ResetResult: *result})
}
