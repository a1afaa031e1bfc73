package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/parceltrack/parceltrack/internal/handler/dto"
	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/payment"
	"github.com/parceltrack/parceltrack/internal/repository/memory"
	"github.com/parceltrack/parceltrack/internal/service"
)

type stubGateway struct {
	err error
}

func (g stubGateway) CreateIntent(_ context.Context, amount int64) (*payment.Intent, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret", Amount: amount, Currency: "usd"}, nil
}

type testServer struct {
	router http.Handler
	repo   *memory.Repository
}

func newTestServer(t *testing.T, gw payment.Gateway) *testServer {
	t.Helper()

	logger := testLogger()
	repo := memory.New()

	users := NewUserHandler(service.NewUserService(repo, logger), logger)
	parcels := NewParcelHandler(service.NewParcelService(repo, nil, nil, nil, logger), logger)
	tracking := NewTrackingHandler(service.NewTrackingService(repo, nil, nil), logger)
	payments := NewPaymentHandler(service.NewPaymentService(repo, gw, nil, nil, nil, logger), logger)

	r := chi.NewRouter()
	r.Post("/users", users.Register)
	r.Get("/users/{email}", users.Get)
	r.Get("/parcels", parcels.List)
	r.Post("/parcels", parcels.Create)
	r.Get("/parcels/{id}", parcels.Get)
	r.Delete("/parcels/{id}", parcels.Delete)
	r.Post("/tracking", tracking.Create)
	r.Get("/tracking-updates/{parcelId}", tracking.List)
	r.Post("/payments", payments.Record)
	r.Get("/payments/user/{email}", payments.ListForUser)
	r.Post("/create-payment-intent", payments.CreateIntent)

	return &testServer{router: r, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rec.Body.String())
	}
}

func TestUserHandler_Register(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/users", map[string]any{"email": "a@x.com", "name": "Alice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var first dto.RegisterUserResponse
	decodeInto(t, rec, &first)
	if !first.Inserted || first.InsertedID == "" {
		t.Errorf("first registration = %+v", first)
	}

	rec = s.do(t, http.MethodPost, "/users", map[string]any{"email": "a@x.com"})
	var second dto.RegisterUserResponse
	decodeInto(t, rec, &second)
	if second.Inserted || second.Message != service.MessageUserExists {
		t.Errorf("second registration = %+v", second)
	}

	rec = s.do(t, http.MethodGet, "/users/a@x.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET user status = %d", rec.Code)
	}
	var user map[string]any
	decodeInto(t, rec, &user)
	if user["name"] != "Alice" || user["_id"] != first.InsertedID {
		t.Errorf("user = %v", user)
	}
}

func TestUserHandler_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	if rec := s.do(t, http.MethodPost, "/users", map[string]any{"name": "x"}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing email status = %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/users", "{"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/users/ghost@x.com", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d", rec.Code)
	}
}

func TestParcelHandler_CreateGetDelete(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/parcels", map[string]any{"created_by": "a@x.com", "receiverName": "Bob"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var created dto.InsertResponse
	decodeInto(t, rec, &created)
	if !created.Acknowledged || !model.IsValidID(created.InsertedID) {
		t.Fatalf("create = %+v", created)
	}

	rec = s.do(t, http.MethodGet, "/parcels/"+created.InsertedID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var doc map[string]any
	decodeInto(t, rec, &doc)
	if doc["_id"] != created.InsertedID || doc["receiverName"] != "Bob" || doc["paymentStatus"] != "unpaid" {
		t.Errorf("parcel = %v", doc)
	}

	rec = s.do(t, http.MethodDelete, "/parcels/"+created.InsertedID, nil)
	var deleted dto.DeleteResponse
	decodeInto(t, rec, &deleted)
	if rec.Code != http.StatusOK || deleted.DeletedCount != 1 {
		t.Errorf("delete = %d %+v", rec.Code, deleted)
	}

	rec = s.do(t, http.MethodDelete, "/parcels/"+created.InsertedID, nil)
	decodeInto(t, rec, &deleted)
	if rec.Code != http.StatusOK || deleted.DeletedCount != 0 {
		t.Errorf("second delete = %d %+v", rec.Code, deleted)
	}

	if rec := s.do(t, http.MethodGet, "/parcels/"+created.InsertedID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestParcelHandler_InvalidID(t *testing.T) {
	s := newTestServer(t, nil)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := s.do(t, method, "/parcels/not-an-id", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", method, rec.Code)
		}
	}
}

func TestParcelHandler_CreateRejectsNonObject(t *testing.T) {
	s := newTestServer(t, nil)

	if rec := s.do(t, http.MethodPost, "/parcels", "[1,2]"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestParcelHandler_ListFilter(t *testing.T) {
	s := newTestServer(t, nil)

	for _, creator := range []string{"a@x.com", "a@x.com", "b@x.com"} {
		s.do(t, http.MethodPost, "/parcels", map[string]any{"created_by": creator})
	}

	var mine []map[string]any
	decodeInto(t, s.do(t, http.MethodGet, "/parcels?email=a@x.com", nil), &mine)
	if len(mine) != 2 {
		t.Errorf("filtered len = %d, want 2", len(mine))
	}

	var all []map[string]any
	decodeInto(t, s.do(t, http.MethodGet, "/parcels", nil), &all)
	if len(all) != 3 {
		t.Errorf("all len = %d, want 3", len(all))
	}

	rec := s.do(t, http.MethodGet, "/parcels?email=nobody@x.com", nil)
	if body := bytes.TrimSpace(rec.Body.Bytes()); string(body) != "[]" {
		t.Errorf("empty list body = %s, want []", body)
	}
}

func TestTrackingHandler(t *testing.T) {
	s := newTestServer(t, nil)
	parcelID := model.NewID()

	rec := s.do(t, http.MethodPost, "/tracking", map[string]any{"parcelId": parcelID, "status": "in_transit"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created dto.CreateTrackingResponse
	decodeInto(t, rec, &created)
	if !created.Success || created.Result.UpdatedBy != model.DefaultUpdatedBy {
		t.Errorf("create = %+v", created)
	}

	var updates []model.TrackingUpdate
	decodeInto(t, s.do(t, http.MethodGet, "/tracking-updates/"+parcelID, nil), &updates)
	if len(updates) != 1 || updates[0].Status != "in_transit" {
		t.Errorf("updates = %+v", updates)
	}
}

func TestTrackingHandler_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/tracking", map[string]any{"status": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing parcelId status = %d", rec.Code)
	}
	if s.repo.CountTrackingUpdates() != 0 {
		t.Error("no update should be written")
	}

	if rec := s.do(t, http.MethodGet, "/tracking-updates/bad", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid id status = %d", rec.Code)
	}
}

func TestPaymentHandler_Record(t *testing.T) {
	s := newTestServer(t, nil)

	var created dto.InsertResponse
	decodeInto(t, s.do(t, http.MethodPost, "/parcels", map[string]any{"created_by": "a@x.com"}), &created)

	rec := s.do(t, http.MethodPost, "/payments", map[string]any{
		"parcelId":      created.InsertedID,
		"userEmail":     "a@x.com",
		"amount":        150,
		"transactionId": "pi_1",
		"paymentMethod": "card",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res dto.RecordPaymentResponse
	decodeInto(t, rec, &res)
	if res.ParcelUpdate.ModifiedCount != 1 || !model.IsValidID(res.Payment.InsertedID) {
		t.Errorf("record = %+v", res)
	}

	var history []model.Payment
	decodeInto(t, s.do(t, http.MethodGet, "/payments/user/a@x.com", nil), &history)
	if len(history) != 1 || history[0].Amount != 150 {
		t.Errorf("history = %+v", history)
	}
}

func TestPaymentHandler_RecordMissingParcel(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/payments", map[string]any{"parcelId": model.NewID(), "userEmail": "a@x.com"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if s.repo.CountPayments() != 0 {
		t.Error("no payment should be written")
	}

	if rec := s.do(t, http.MethodPost, "/payments", map[string]any{"userEmail": "a@x.com"}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing parcelId status = %d", rec.Code)
	}
}

func TestPaymentHandler_CreateIntent(t *testing.T) {
	s := newTestServer(t, stubGateway{})

	rec := s.do(t, http.MethodPost, "/create-payment-intent", map[string]any{"amountsInCents": 15000})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res dto.CreateIntentResponse
	decodeInto(t, rec, &res)
	if res.ClientSecret != "pi_1_secret" {
		t.Errorf("clientSecret = %q", res.ClientSecret)
	}

	if rec := s.do(t, http.MethodPost, "/create-payment-intent", map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing amount status = %d", rec.Code)
	}
}

func TestPaymentHandler_CreateIntentProcessorFailure(t *testing.T) {
	s := newTestServer(t, stubGateway{err: errors.New("No such customer: cus_secret")})

	rec := s.do(t, http.MethodPost, "/create-payment-intent", map[string]any{"amountsInCents": 100})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("cus_secret")) {
		t.Errorf("processor detail leaked: %s", rec.Body.String())
	}
}
