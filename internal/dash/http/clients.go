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

// ClientsHandler handles client management endpoints.
type ClientsHandler struct {
	LedgerService *service.LedgerService
}

type clientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandleList handles GET /v1/clients.
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clients, err := h.LedgerService.ListClients(ctx)
	if err != nil {
		log.Error("failed to list clients", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to list clients")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, clients)
}

// HandleGet handles GET /v1/clients/{id}.
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	client, err := h.LedgerService.GetClient(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			httpx.Error(w, http.StatusNotFound, "client not found")
			return
		}
		log.Error("failed to get client", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to get client")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, client)
}

// HandleCreate handles POST /v1/clients.
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	client, err := h.LedgerService.CreateClient(ctx, strings.TrimSpace(req.Name), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, service.ErrNameRequired) {
			httpx.Error(w, http.StatusBadRequest, "client name is required")
			return
		}
		log.Error("failed to create client", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to create client")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, client)
}

// HandleUpdate handles PUT /v1/clients/{id}.
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	client, err := h.LedgerService.UpdateClient(ctx, r.PathValue("id"),
		strings.TrimSpace(req.Name), strings.TrimSpace(req.Email))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameRequired):
			httpx.Error(w, http.StatusBadRequest, "client name is required")
		case errors.Is(err, service.ErrClientNotFound):
			httpx.Error(w, http.StatusNotFound, "client not found")
		default:
			log.Error("failed to update client", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to update client")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, client)
}

// HandleDelete handles DELETE /v1/clients/{id}.
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	err := h.LedgerService.DeleteClient(ctx, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			httpx.Error(w, http.StatusNotFound, "client not found")
		case errors.Is(err, service.ErrClientHasProjects):
			httpx.Error(w, http.StatusConflict, "client still has projects")
		default:
			log.Error("failed to delete client", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to delete client")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
