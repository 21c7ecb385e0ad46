package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/chayanitb/task-tracker-api/internal/config"
	"github.com/chayanitb/task-tracker-api/internal/middleware"
	"github.com/chayanitb/task-tracker-api/internal/model"
	"github.com/chayanitb/task-tracker-api/internal/usecase"
)

// TaskHandler serves the ownership-scoped task endpoints.
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
	validator   *requestValidator
	cfg         *config.Config
	logger      *zerolog.Logger
}

// NewTaskHandler creates a new TaskHandler instance.
func NewTaskHandler(taskUsecase usecase.TaskUsecase, cfg *config.Config, logger *zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
		validator:   newRequestValidator(),
		cfg:         cfg,
		logger:      logger,
	}
}

type createTaskRequest struct {
	Project     string `json:"project"  validate:"required"`
	Title       string `json:"title"    validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status"   validate:"omitempty,oneof=pending in-progress completed"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req createTaskRequest
	if err := h.validator.decodeAndValidate(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskUsecase.CreateTask(r.Context(), user.ID, usecase.CreateTaskParams{
		ProjectID:   req.Project,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrProjectNotFound) {
			writeFail(w, http.StatusNotFound, "Project not found")
			return
		}

		h.serverError(w, err, "create task failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "task": task})
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var projectID *string
	if p := r.URL.Query().Get("project"); p != "" {
		projectID = &p
	}

	tasks, err := h.taskUsecase.ListTasks(r.Context(), user.ID, projectID)
	if err != nil {
		if errors.Is(err, usecase.ErrProjectNotFound) {
			writeFail(w, http.StatusNotFound, "Project not found")
			return
		}

		h.serverError(w, err, "list tasks failed")
		return
	}

	if tasks == nil {
		tasks = []*model.Task{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "tasks": tasks})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	task, err := h.taskUsecase.GetTask(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, usecase.ErrTaskNotFound) {
			writeFail(w, http.StatusNotFound, "Task not found")
			return
		}

		h.serverError(w, err, "get task failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "task": task})
}

type updateTaskRequest struct {
	Project     *string `json:"project"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"   validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req updateTaskRequest
	if err := h.validator.decodeAndValidate(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskUsecase.UpdateTask(r.Context(), user.ID, chi.URLParam(r, "id"), usecase.UpdateTaskParams{
		ProjectID:   req.Project,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrTaskNotFound):
			writeFail(w, http.StatusNotFound, "Task not found")
		case errors.Is(err, usecase.ErrProjectNotFound):
			writeFail(w, http.StatusNotFound, "Project not found")
		default:
			h.serverError(w, err, "update task failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "task": task})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := h.taskUsecase.DeleteTask(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, usecase.ErrTaskNotFound) {
			writeFail(w, http.StatusNotFound, "Task not found")
			return
		}

		h.serverError(w, err, "delete task failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Task deleted"})
}

func (h *TaskHandler) serverError(w http.ResponseWriter, err error, msg string) {
	h.logger.Error().Err(err).Msg(msg)

	message := "Something went wrong!"
	if !h.cfg.IsProduction() {
		message = err.Error()
	}

	writeFail(w, http.StatusInternalServerError, message)
}
