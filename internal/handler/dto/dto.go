// Package dto provides Data Transfer Objects for API requests and responses.
// Field names follow the document-store wire format the clients already speak.
package dto

import (
	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/repository"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RegisterUserResponse reports the outcome of POST /users.
type RegisterUserResponse struct {
	Message    string `json:"message"`
	Inserted   bool   `json:"inserted"`
	InsertedID string `json:"insertedId,omitempty"`
}

// InsertResponse acknowledges a single-document insert.
type InsertResponse struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// DeleteResponse acknowledges a delete by id.
type DeleteResponse struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// UpdateResponse acknowledges a single-document update.
type UpdateResponse struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// CreateTrackingRequest is the body of POST /tracking.
type CreateTrackingRequest struct {
	ParcelID  string `json:"parcelId"`
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
	UpdatedBy string `json:"updated_by,omitempty"`
}

// CreateTrackingResponse wraps the stored tracking update.
type CreateTrackingResponse struct {
	Success bool                  `json:"success"`
	Result  *model.TrackingUpdate `json:"result"`
}

// RecordPaymentRequest is the body of POST /payments.
type RecordPaymentRequest struct {
	ParcelID      string  `json:"parcelId"`
	UserEmail     string  `json:"userEmail"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transactionId"`
	PaymentMethod string  `json:"paymentMethod"`
}

// RecordPaymentResponse reports both writes of a recorded payment.
type RecordPaymentResponse struct {
	ParcelUpdate UpdateResponse `json:"parcelUpdate"`
	Payment      InsertResponse `json:"payment"`
}

// CreateIntentRequest is the body of POST /create-payment-intent.
type CreateIntentRequest struct {
	AmountsInCents float64 `json:"amountsInCents"`
}

// CreateIntentResponse carries the secret the client confirms the charge with.
type CreateIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// ToRecordPaymentResponse converts the stored halves of a payment.
func ToRecordPaymentResponse(update repository.ParcelPaymentUpdate, payment *model.Payment) *RecordPaymentResponse {
	return &RecordPaymentResponse{
		ParcelUpdate: UpdateResponse{
			Acknowledged:  true,
			MatchedCount:  update.MatchedCount,
			ModifiedCount: update.ModifiedCount,
		},
		Payment: InsertResponse{
			Acknowledged: true,
			InsertedID:   payment.ID,
		},
	}
}
