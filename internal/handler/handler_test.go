package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/parceltrack/parceltrack/internal/handler/dto"
	"github.com/parceltrack/parceltrack/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestHandler_Root(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Root(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %s", ct)
	}
	if rec.Body.String() != RootMessage {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error != "resource not found" {
		t.Errorf("unexpected error message: %s", resp.Error)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodPut, "/", nil)
	rec := httptest.NewRecorder()

	h.MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("unexpected code: %s", resp.Code)
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{service.ErrInvalidID, http.StatusBadRequest, "INVALID_ID"},
		{service.ErrEmailRequired, http.StatusBadRequest, "EMAIL_REQUIRED"},
		{service.ErrMissingTrackingFields, http.StatusBadRequest, "MISSING_FIELDS"},
		{service.ErrParcelIDRequired, http.StatusBadRequest, "PARCEL_ID_REQUIRED"},
		{service.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{service.ErrParcelNotFound, http.StatusNotFound, "PARCEL_NOT_FOUND"},
		{service.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{service.ErrUserExists, http.StatusConflict, "USER_EXISTS"},
		{service.ErrProcessorFailure, http.StatusInternalServerError, "PAYMENT_PROCESSOR_ERROR"},
		{fmt.Errorf("wrapped: %w", service.ErrParcelNotFound), http.StatusNotFound, "PARCEL_NOT_FOUND"},
		{errors.New("dial tcp 10.0.0.5:27017: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, testLogger(), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeError(t, rec)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tt.wantCode)
			}
			if strings.Contains(resp.Error, "10.0.0.5") {
				t.Errorf("internal detail leaked: %s", resp.Error)
			}
		})
	}
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := strings.NewReader(`{"payload":"` + strings.Repeat("x", 64) + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/parcels", body)
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	var v map[string]any
	if decodeJSON(rec, req, &v) {
		t.Fatal("expected decode to fail")
	}
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}
