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

// PaymentsHandler handles payment management endpoints.
type PaymentsHandler struct {
	LedgerService *service.LedgerService
}

type createPaymentRequest struct {
	ProjectID string  `json:"project_id"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	Type      string  `json:"type"`
}

type updatePaymentRequest struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Type   string  `json:"type"`
}

// paymentResponse reports the booked payment plus whether it pushed the
// project past its budget. Overpayment is accepted, the flag is a warning.
type paymentResponse struct {
	Success  bool           `json:"success"`
	Payment  domain.Payment `json:"payment"`
	Overpaid bool           `json:"overpaid"`
}

// HandleListByProject handles GET /v1/projects/{id}/payments.
func (h *PaymentsHandler) HandleListByProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	payments, err := h.LedgerService.ListPaymentsByProject(ctx, r.PathValue("id"))
	if err != nil {
		log.Error("failed to list payments", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to list payments")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, payments)
}

// HandleCreate handles POST /v1/payments.
func (h *PaymentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if req.ProjectID == "" {
		httpx.Error(w, http.StatusBadRequest, "project_id is required")
		return
	}

	payment, overpaid, err := h.LedgerService.RecordPayment(ctx, req.ProjectID, req.Amount, req.Date, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			httpx.Error(w, http.StatusBadRequest, "payment amount must be positive")
		case errors.Is(err, service.ErrProjectNotFound):
			httpx.Error(w, http.StatusNotFound, "project not found")
		default:
			log.Error("failed to record payment", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to record payment")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, paymentResponse{Success: true, Payment: payment, Overpaid: overpaid})
}

// HandleUpdate handles PUT /v1/payments/{id}.
func (h *PaymentsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req updatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	payment, overpaid, err := h.LedgerService.EditPayment(ctx, service.EditPaymentCommand{
		PaymentID: r.PathValue("id"),
		Amount:    req.Amount,
		Date:      req.Date,
		Type:      req.Type,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			httpx.Error(w, http.StatusBadRequest, "payment amount must be positive")
		case errors.Is(err, service.ErrPaymentNotFound):
			httpx.Error(w, http.StatusNotFound, "payment not found")
		default:
			log.Error("failed to update payment", "error", err)
			httpx.Error(w, http.StatusInternalServerError, "failed to update payment")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, paymentResponse{Success: true, Payment: payment, Overpaid: overpaid})
}

// HandleDelete handles DELETE /v1/payments/{id}.
func (h *PaymentsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	err := h.LedgerService.DeletePayment(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			httpx.Error(w, http.StatusNotFound, "payment not found")
			return
		}
		log.Error("failed to delete payment", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to delete payment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
