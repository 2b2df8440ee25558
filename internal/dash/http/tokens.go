package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fernlabs/clientdash/internal/dash/service"
	"github.com/fernlabs/clientdash/pkg/httpx"
	"github.com/fernlabs/clientdash/pkg/slogx"
)

// TokensHandler issues client share links.
type TokensHandler struct {
	TokenService  *service.TokenService
	PublicBaseURL string
}

type generateTokenRequest struct {
	ClientID string `json:"client_id"`
}

type generateTokenResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	Link      string `json:"link"`
	ExpiresAt string `json:"expires_at"`
}

// HandleGenerate handles POST /v1/tokens/generate.
func (h *TokensHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req generateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if req.ClientID == "" {
		httpx.Error(w, http.StatusBadRequest, "client_id is required")
		return
	}

	token, err := h.TokenService.Issue(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			httpx.Error(w, http.StatusNotFound, "client not found")
			return
		}
		log.Error("failed to issue access token", "error", err, "client_id", req.ClientID)
		httpx.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, generateTokenResponse{
		Success:   true,
		Token:     token.Token,
		Link:      h.shareLink(token.Token),
		ExpiresAt: token.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *TokensHandler) shareLink(token string) string {
	return fmt.Sprintf("%s/v1/client-data?token=%s", h.PublicBaseURL, url.QueryEscape(token))
}
