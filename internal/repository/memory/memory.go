// Package memory provides an in-process storage backend.
// It is used by tests and by `DATABASE_DRIVER=memory` for local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/repository"
)

var _ repository.Repository = (*Repository)(nil)

// Repository stores documents in maps guarded by a single mutex.
type Repository struct {
	mu       sync.RWMutex
	users    map[string]*model.User // keyed by email
	parcels  map[string]*model.Parcel
	tracking []*model.TrackingUpdate
	payments []*model.Payment
}

// New creates an empty Repository.
func New() *Repository {
	return &Repository{
		users:   make(map[string]*model.User),
		parcels: make(map[string]*model.Parcel),
	}
}

// Ping always succeeds.
func (r *Repository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (r *Repository) Close(ctx context.Context) error {
	return nil
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(user), nil
}

// CreateUser inserts a user, rejecting duplicate emails.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	r.users[user.Email] = copyUser(user)
	return nil
}

// CreateParcel inserts a parcel.
func (r *Repository) CreateParcel(ctx context.Context, parcel *model.Parcel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.parcels[parcel.ID] = copyParcel(parcel)
	return nil
}

// GetParcelByID retrieves a parcel by ID.
func (r *Repository) GetParcelByID(ctx context.Context, id string) (*model.Parcel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parcel, ok := r.parcels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyParcel(parcel), nil
}

// ListParcels returns parcels newest first, optionally filtered by creator.
func (r *Repository) ListParcels(ctx context.Context, filter repository.ParcelFilter) ([]*model.Parcel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	parcels := make([]*model.Parcel, 0, len(r.parcels))
	for _, p := range r.parcels {
		if filter.CreatedBy != "" && p.CreatedBy != filter.CreatedBy {
			continue
		}
		parcels = append(parcels, copyParcel(p))
	}

	sort.Slice(parcels, func(i, j int) bool {
		if parcels[i].CreatedAt.Equal(parcels[j].CreatedAt) {
			return parcels[i].ID > parcels[j].ID
		}
		return parcels[i].CreatedAt.After(parcels[j].CreatedAt)
	})

	return parcels, nil
}

// DeleteParcel removes a parcel. Missing parcels yield a zero count.
func (r *Repository) DeleteParcel(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.parcels[id]; !ok {
		return 0, nil
	}
	delete(r.parcels, id)
	return 1, nil
}

// CreateTrackingUpdate appends a tracking update.
func (r *Repository) CreateTrackingUpdate(ctx context.Context, update *model.TrackingUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u := *update
	r.tracking = append(r.tracking, &u)
	return nil
}

// ListTrackingUpdates returns a parcel's updates newest first.
func (r *Repository) ListTrackingUpdates(ctx context.Context, parcelID string) ([]*model.TrackingUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	updates := make([]*model.TrackingUpdate, 0)
	for _, u := range r.tracking {
		if u.ParcelID == parcelID {
			c := *u
			updates = append(updates, &c)
		}
	}

	sort.Slice(updates, func(i, j int) bool {
		if updates[i].UpdatedAt.Equal(updates[j].UpdatedAt) {
			return updates[i].ID > updates[j].ID
		}
		return updates[i].UpdatedAt.After(updates[j].UpdatedAt)
	})

	return updates, nil
}

// RecordPayment marks the parcel paid and appends the payment under one lock.
func (r *Repository) RecordPayment(ctx context.Context, payment *model.Payment) (*repository.ParcelPaymentUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parcel, ok := r.parcels[payment.ParcelID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	result := &repository.ParcelPaymentUpdate{MatchedCount: 1}
	if parcel.PaymentStatus != model.PaymentStatusPaid {
		parcel.PaymentStatus = model.PaymentStatusPaid
		result.ModifiedCount = 1
	}

	p := *payment
	r.payments = append(r.payments, &p)

	return result, nil
}

// ListPaymentsByEmail returns a user's payments newest first.
func (r *Repository) ListPaymentsByEmail(ctx context.Context, email string) ([]*model.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	payments := make([]*model.Payment, 0)
	for _, p := range r.payments {
		if p.UserEmail == email {
			c := *p
			payments = append(payments, &c)
		}
	}

	sort.Slice(payments, func(i, j int) bool {
		if payments[i].PaidAt.Equal(payments[j].PaidAt) {
			return payments[i].ID > payments[j].ID
		}
		return payments[i].PaidAt.After(payments[j].PaidAt)
	})

	return payments, nil
}

// CountUsers returns the number of stored users.
func (r *Repository) CountUsers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// CountTrackingUpdates returns the number of stored tracking updates.
func (r *Repository) CountTrackingUpdates() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tracking)
}

// CountPayments returns the number of stored payments.
func (r *Repository) CountPayments() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments)
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.Attributes = u.Attributes.Clone()
	return &c
}

func copyParcel(p *model.Parcel) *model.Parcel {
	c := *p
	c.Attributes = p.Attributes.Clone()
	return &c
}
