package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/service"
	"github.com/fernlabs/clientdash/pkg/httpx"
	"github.com/fernlabs/clientdash/pkg/slogx"
)

// LogsHandler serves the audit trail and accepts external log entries
// authenticated by the shared admin API key.
type LogsHandler struct {
	AuditService *service.AuditService
	AdminAPIKey  string
}

type appendLogRequest struct {
	Action string `json:"action"`
	Detail string `json:"detail"`
}

type appendLogResponse struct {
	Success bool `json:"success"`
}

// HandleList handles GET /v1/logs?limit=&offset=.
func (h *LogsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.AuditService.List(ctx, limit, offset)
	if err != nil {
		log.Error("failed to list audit entries", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to list logs")
		return
	}
	if entries == nil {
		entries = []domain.LogEntry{}
	}

	httpx.WriteJSON(w, http.StatusOK, entries)
}

// HandleAppend handles POST /v1/admin/log.
func (h *LogsHandler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	key := r.Header.Get("x-admin-api-key")
	if h.AdminAPIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.AdminAPIKey)) != 1 {
		httpx.Error(w, http.StatusUnauthorized, "invalid admin api key")
		return
	}

	var req appendLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	action := strings.TrimSpace(req.Action)
	if action == "" {
		action = domain.ActionAdminLog
	}

	if err := h.AuditService.Record(ctx, action, req.Detail); err != nil {
		log.Error("failed to append admin log entry", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to record log entry")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, appendLogResponse{Success: true})
}
