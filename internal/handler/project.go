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

// ProjectHandler serves the ownership-scoped project endpoints.
type ProjectHandler struct {
	projectUsecase usecase.ProjectUsecase
	validator      *requestValidator
	cfg            *config.Config
	logger         *zerolog.Logger
}

// NewProjectHandler creates a new ProjectHandler instance.
func NewProjectHandler(projectUsecase usecase.ProjectUsecase, cfg *config.Config, logger *zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectUsecase: projectUsecase,
		validator:      newRequestValidator(),
		cfg:            cfg,
		logger:         logger,
	}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req createProjectRequest
	if err := h.validator.decodeAndValidate(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projectUsecase.CreateProject(r.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrProjectLimitReached):
			writeFail(w, http.StatusBadRequest, "You have reached the maximum limit of 4 projects")
		case errors.Is(err, usecase.ErrProjectNameTaken):
			writeFail(w, http.StatusBadRequest, "Project name already exists")
		default:
			h.serverError(w, err, "create project failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "project": project})
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	projects, err := h.projectUsecase.ListProjects(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, err, "list projects failed")
		return
	}

	if projects == nil {
		projects = []*model.Project{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "projects": projects})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	project, err := h.projectUsecase.GetProject(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, usecase.ErrProjectNotFound) {
			writeFail(w, http.StatusNotFound, "Project not found")
			return
		}

		h.serverError(w, err, "get project failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "project": project})
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req updateProjectRequest
	if err := h.validator.decodeAndValidate(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projectUsecase.UpdateProject(r.Context(), user.ID, chi.URLParam(r, "id"), usecase.UpdateProjectParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrProjectNotFound):
			writeFail(w, http.StatusNotFound, "Project not found")
		case errors.Is(err, usecase.ErrProjectNameTaken):
			writeFail(w, http.StatusBadRequest, "Project name already exists")
		default:
			h.serverError(w, err, "update project failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "project": project})
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := h.projectUsecase.DeleteProject(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, usecase.ErrProjectNotFound) {
			writeFail(w, http.StatusNotFound, "Project not found")
			return
		}

		h.serverError(w, err, "delete project failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Project and associated tasks deleted successfully",
	})
}

func (h *ProjectHandler) serverError(w http.ResponseWriter, err error, msg string) {
	h.logger.Error().Err(err).Msg(msg)

	message := "Something went wrong!"
	if !h.cfg.IsProduction() {
		message = err.Error()
	}

	writeFail(w, http.StatusInternalServerError, message)
}
