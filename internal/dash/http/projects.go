package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fernlabs/clientdash/internal/dash/service"
	"github.com/fernlabs/clientdash/pkg/httpx"
	"github.com/fernlabs/clientdash/pkg/slogx"
)

// ProjectsHandler handles project management endpoints.
type ProjectsHandler struct {
	LedgerService *service.LedgerService
}

type createProjectRequest struct {
	ClientID string  `json:"client_id"`
	Name     string  `json:"name"`
	Budget   float64 `json:"budget"`
}

type updateProjectRequest struct {
	Name   string  `json:"name"`
	Budget float64 `json:"budget"`
}

// HandleList handles GET /v1/projects.
func (h *ProjectsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	projects, err := h.LedgerService.ListProjects(ctx)
	if err != nil {
		log.Error("failed to list projects", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, projects)
}

// HandleListByClient handles GET /v1/clients/{id}/projects.
func (h *ProjectsHandler) HandleListByClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	projects, err := h.LedgerService.ListProjectsByClient(ctx, r.PathValue("id"))
	if err != nil {
		log.Error("failed to list client projects", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, projects)
}

// HandleGet handles GET /v1/projects/{id}.
func (h *ProjectsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	project, err := h.LedgerService.GetProject(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			httpx.Error(w, http.StatusNotFound, "project not found")
			return
		}
		log.Error("failed to get project", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to get project")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, project)
}

// HandleCreate handles POST /v1/projects.
func (h *ProjectsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if req.ClientID == "" {
		httpx.Error(w, http.StatusBadRequest, "client_id is required")
		return
	}

	project, err := h.LedgerService.CreateProject(ctx, req.ClientID, strings.TrimSpace(req.Name), req.Budget)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameRequired):
			httpx.Error(w, http.StatusBadRequest, "project name is required")
		case errors.Is(err, service.ErrInvalidBudget):
			httpx.Error(w, http.StatusBadRequest, "budget must be positive")
		case errors.Is(err, service.ErrClientNotFound):
			httpx.Error(w, http.StatusNotFound, "client not found")
		default:
			log.Error("failed to create project", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to create project")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, project)
}

// HandleUpdate handles PUT /v1/projects/{id}.
func (h *ProjectsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	project, err := h.LedgerService.EditProject(ctx, r.PathValue("id"), strings.TrimSpace(req.Name), req.Budget)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameRequired):
			httpx.Error(w, http.StatusBadRequest, "project name is required")
		case errors.Is(err, service.ErrInvalidBudget):
			httpx.Error(w, http.StatusBadRequest, "budget must be positive")
		case errors.Is(err, service.ErrProjectNotFound):
			httpx.Error(w, http.StatusNotFound, "project not found")
		default:
			log.Error("failed to update project", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to update project")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, project)
}

// HandleDelete handles DELETE /v1/projects/{id}.
func (h *ProjectsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	err := h.LedgerService.DeleteProject(ctx, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			httpx.Error(w, http.StatusNotFound, "project not found")
		case errors.Is(err, service.ErrProjectHasPayments):
			httpx.Error(w, http.StatusConflict, "project still has payments")
		default:
			log.Error("failed to delete project", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to delete project")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
