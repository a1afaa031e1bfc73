package handler

import (
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parceltrack/parceltrack/internal/handler/dto"
	"github.com/parceltrack/parceltrack/internal/service"
)

// PaymentHandler handles HTTP requests for the payment workflow.
type PaymentHandler struct {
	svc    *service.PaymentService
	logger *slog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: logger}
}

// CreateIntent handles POST /create-payment-intent.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateIntentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	secret, err := h.svc.CreateIntent(r.Context(), int64(math.Round(req.AmountsInCents)))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreateIntentResponse{ClientSecret: secret})
}

// Record handles POST /payments.
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.RecordPayment(r.Context(), service.RecordPaymentInput{
		ParcelID:      req.ParcelID,
		UserEmail:     req.UserEmail,
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("payment_recorded",
		"parcel_id", res.Payment.ParcelID,
		"payment_id", res.Payment.ID,
		"modified", res.ParcelUpdate.ModifiedCount,
	)

	writeJSON(w, http.StatusOK, dto.ToRecordPaymentResponse(res.ParcelUpdate, res.Payment))
}

// ListForUser handles GET /payments/user/{email}.
func (h *PaymentHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.ListPaymentsForUser(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payments)
}
