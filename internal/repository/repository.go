// Package repository defines the storage contract shared by every backend.
// Backends live in subpackages: mongodb, postgres and memory.
package repository

import (
	"context"
	"errors"

	"github.com/parceltrack/parceltrack/internal/model"
)

// Common errors returned by all backends.
var (
	ErrNotFound       = errors.New("document not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Collection names, shared by the document and relational backends.
const (
	CollectionUsers           = "users"
	CollectionParcels         = "parcels"
	CollectionTrackingUpdates = "trackingUpdates"
	CollectionPayments        = "payments"
)

// UserStore persists users. Email uniqueness is enforced by the backend.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// CreateUser returns ErrDuplicateEmail when the email is already taken.
	CreateUser(ctx context.Context, user *model.User) error
}

// ParcelFilter narrows parcel listings.
type ParcelFilter struct {
	CreatedBy string
}

// ParcelStore persists parcels.
type ParcelStore interface {
	CreateParcel(ctx context.Context, parcel *model.Parcel) error
	GetParcelByID(ctx context.Context, id string) (*model.Parcel, error)
	// ListParcels returns parcels newest first by CreatedAt.
	ListParcels(ctx context.Context, filter ParcelFilter) ([]*model.Parcel, error)
	// DeleteParcel returns the number of removed parcels; zero is not an error.
	DeleteParcel(ctx context.Context, id string) (int64, error)
}

// TrackingStore persists the append-only tracking ledger.
type TrackingStore interface {
	CreateTrackingUpdate(ctx context.Context, update *model.TrackingUpdate) error
	// ListTrackingUpdates returns updates for a parcel newest first by UpdatedAt.
	ListTrackingUpdates(ctx context.Context, parcelID string) ([]*model.TrackingUpdate, error)
}

// ParcelPaymentUpdate reports the effect of marking a parcel paid.
type ParcelPaymentUpdate struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// PaymentStore persists payment receipts.
type PaymentStore interface {
	// RecordPayment marks the payment's parcel paid and inserts the payment
	// as one atomic unit. If the parcel does not exist nothing is written
	// and ErrNotFound is returned.
	RecordPayment(ctx context.Context, payment *model.Payment) (*ParcelPaymentUpdate, error)
	// ListPaymentsByEmail returns payments newest first by PaidAt.
	ListPaymentsByEmail(ctx context.Context, email string) ([]*model.Payment, error)
}

// Repository is a complete storage backend.
type Repository interface {
	UserStore
	ParcelStore
	TrackingStore
	PaymentStore

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
