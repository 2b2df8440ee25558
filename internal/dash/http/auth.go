package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/service"
	"github.com/fernlabs/clientdash/pkg/httpx"
	"github.com/fernlabs/clientdash/pkg/slogx"
)

// AuthHandler handles operator login.
type AuthHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// HandleLogin handles POST /v1/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, user, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		log.Error("login failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}
