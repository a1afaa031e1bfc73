package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parceltrack/parceltrack/internal/handler/dto"
	"github.com/parceltrack/parceltrack/internal/service"
)

// UserHandler handles HTTP requests for user registration.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if !decodeJSON(w, r, &fields) {
		return
	}

	res, err := h.svc.Register(r.Context(), fields)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	if res.Inserted {
		h.logger.Info("user_registered", "user_id", res.InsertedID)
	}

	writeJSON(w, http.StatusOK, dto.RegisterUserResponse{
		Message:    res.Message,
		Inserted:   res.Inserted,
		InsertedID: res.InsertedID,
	})
}

// Get handles GET /users/{email}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetUser(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
