//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parceltrack/parceltrack/internal/events"
	"github.com/parceltrack/parceltrack/internal/handler/dto"
	"github.com/parceltrack/parceltrack/internal/model"
)

// TestE2ESmoke drives a running server through the parcel lifecycle.
// When REDIS_URL is set and the server runs with EVENTS_BACKEND=redis,
// it also waits for the payment event on the stream.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("PARCELTRACK_BASE_URL", "http://localhost:5000")
	email := fmt.Sprintf("e2e-%d@parceltrack.test", time.Now().UnixNano())

	var registered dto.RegisterUserResponse
	if status := doJSON(t, http.MethodPost, baseURL+"/users", map[string]any{"email": email, "name": "E2E"}, &registered); status != http.StatusOK {
		t.Fatalf("expected 200 from user register, got %d", status)
	}
	if !registered.Inserted {
		t.Fatalf("fresh email was not inserted: %+v", registered)
	}

	parcelID := createParcel(t, baseURL, email)

	var tracked dto.CreateTrackingResponse
	status := doJSON(t, http.MethodPost, baseURL+"/tracking", map[string]any{
		"parcelId": parcelID,
		"status":   "in_transit",
	}, &tracked)
	if status != http.StatusOK || !tracked.Success {
		t.Fatalf("tracking create: status %d, success %v", status, tracked.Success)
	}

	var updates []model.TrackingUpdate
	doJSON(t, http.MethodGet, baseURL+"/tracking-updates/"+parcelID, nil, &updates)
	if len(updates) != 1 || updates[0].Status != "in_transit" {
		t.Fatalf("unexpected tracking updates: %+v", updates)
	}

	var paid dto.RecordPaymentResponse
	status = doJSON(t, http.MethodPost, baseURL+"/payments", map[string]any{
		"parcelId":      parcelID,
		"userEmail":     email,
		"amount":        15.75,
		"transactionId": "pi_e2e",
		"paymentMethod": "card",
	}, &paid)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from payment record, got %d", status)
	}
	if paid.ParcelUpdate.ModifiedCount != 1 || paid.Payment.InsertedID == "" {
		t.Fatalf("unexpected payment response: %+v", paid)
	}

	var parcel map[string]any
	doJSON(t, http.MethodGet, baseURL+"/parcels/"+parcelID, nil, &parcel)
	if parcel["paymentStatus"] != "paid" {
		t.Fatalf("parcel not marked paid: %v", parcel)
	}

	var mine []map[string]any
	doJSON(t, http.MethodGet, baseURL+"/parcels?email="+url.QueryEscape(email), nil, &mine)
	if len(mine) != 1 {
		t.Fatalf("expected 1 parcel for %s, got %d", email, len(mine))
	}

	if status := doJSON(t, http.MethodGet, baseURL+"/parcels/not-an-id", nil, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", status)
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		waitForEvent(t, redisURL, parcelID, events.TypePaymentRecorded)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func createParcel(t *testing.T, baseURL, email string) string {
	t.Helper()

	payload := map[string]any{
		"created_by":   email,
		"receiverName": "Bob",
		"weight":       1.2,
	}

	var resp dto.InsertResponse
	status := doJSON(t, http.MethodPost, baseURL+"/parcels", payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from parcel create, got %d", status)
	}
	if !model.IsValidID(resp.InsertedID) {
		t.Fatalf("parcel create returned invalid id %q", resp.InsertedID)
	}
	return resp.InsertedID
}

func waitForEvent(t *testing.T, redisURL, parcelID string, typ events.Type) {
	t.Helper()

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		msgs, err := client.XRevRangeN(ctx, events.StreamKey, "+", "-", 200).Result()
		cancel()
		if err == nil {
			for _, msg := range msgs {
				if msg.Values["parcel_id"] == parcelID && msg.Values["type"] == string(typ) {
					return
				}
			}
		}
		time.Sleep(250 * time.Millisecond)
	}

	t.Fatalf("no %s event for parcel %s on %s", typ, parcelID, events.StreamKey)
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}
