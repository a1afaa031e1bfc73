package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parceltrack/parceltrack/internal/handler/dto"
	"github.com/parceltrack/parceltrack/internal/service"
)

// ParcelHandler handles HTTP requests for parcel operations.
type ParcelHandler struct {
	svc    *service.ParcelService
	logger *slog.Logger
}

// NewParcelHandler creates a new ParcelHandler.
func NewParcelHandler(svc *service.ParcelService, logger *slog.Logger) *ParcelHandler {
	return &ParcelHandler{svc: svc, logger: logger}
}

// List handles GET /parcels?email=.
func (h *ParcelHandler) List(w http.ResponseWriter, r *http.Request) {
	parcels, err := h.svc.ListParcels(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, parcels)
}

// Get handles GET /parcels/{id}.
func (h *ParcelHandler) Get(w http.ResponseWriter, r *http.Request) {
	parcel, err := h.svc.GetParcel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, parcel)
}

// Create handles POST /parcels.
func (h *ParcelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if !decodeJSON(w, r, &fields) {
		return
	}

	parcel, err := h.svc.CreateParcel(r.Context(), fields)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("parcel_created",
		"parcel_id", parcel.ID,
		"has_creator", parcel.CreatedBy != "",
	)

	writeJSON(w, http.StatusCreated, dto.InsertResponse{
		Acknowledged: true,
		InsertedID:   parcel.ID,
	})
}

// Delete handles DELETE /parcels/{id}.
func (h *ParcelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.svc.DeleteParcel(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("parcel_deleted", "parcel_id", id, "deleted_count", deleted)

	writeJSON(w, http.StatusOK, dto.DeleteResponse{
		Acknowledged: true,
		DeletedCount: deleted,
	})
}
