package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/service"
	"github.com/fernlabs/clientdash/pkg/httpx"
	"github.com/fernlabs/clientdash/pkg/slogx"
)

// ClientDataHandler serves the token-gated client snapshot. No session is
// required; the opaque token is the whole credential.
type ClientDataHandler struct {
	TokenService *service.TokenService
}

type clientDataRequest struct {
	Token string `json:"token"`
}

type clientDataResponse struct {
	Success bool              `json:"success"`
	Data    domain.ClientData `json:"data"`
}

// HandleGet handles GET /v1/client-data?token=...
func (h *ClientDataHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, r.URL.Query().Get("token"))
}

// HandlePost handles POST /v1/client-data with the token in the body.
func (h *ClientDataHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	var req clientDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	h.resolve(w, r, req.Token)
}

func (h *ClientDataHandler) resolve(w http.ResponseWriter, r *http.Request, token string) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if token == "" {
		httpx.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	data, err := h.TokenService.Validate(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenNotFound):
			httpx.Error(w, http.StatusNotFound, "invalid access token")
		case errors.Is(err, service.ErrTokenExpired):
			httpx.Error(w, http.StatusForbidden, "access token has expired")
		default:
			log.Error("failed to resolve client data", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to load client data")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, clientDataResponse{Success: true, Data: data})
}
