package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parceltrack/parceltrack/internal/handler/dto"
	"github.com/parceltrack/parceltrack/internal/service"
)

// TrackingHandler handles HTTP requests for the tracking ledger.
type TrackingHandler struct {
	svc    *service.TrackingService
	logger *slog.Logger
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(svc *service.TrackingService, logger *slog.Logger) *TrackingHandler {
	return &TrackingHandler{svc: svc, logger: logger}
}

// Create handles POST /tracking.
func (h *TrackingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTrackingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	update, err := h.svc.AddUpdate(r.Context(), service.AddUpdateInput{
		ParcelID:  req.ParcelID,
		Status:    req.Status,
		Note:      req.Note,
		UpdatedBy: req.UpdatedBy,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("tracking_updated",
		"parcel_id", update.ParcelID,
		"status", update.Status,
	)

	writeJSON(w, http.StatusOK, dto.CreateTrackingResponse{
		Success: true,
		Result:  update,
	})
}

// List handles GET /tracking-updates/{parcelId}.
func (h *TrackingHandler) List(w http.ResponseWriter, r *http.Request) {
	updates, err := h.svc.ListUpdates(r.Context(), chi.URLParam(r, "parcelId"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, updates)
}
