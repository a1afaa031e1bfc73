package service

import (
	"context"

	"github.com/parceltrack/parceltrack/internal/events"
	"github.com/parceltrack/parceltrack/internal/model"
)

// ParcelCache is the read-through cache used for parcel lookups.
// FillParcel must refuse the write when DeleteParcel ran after the
// version passed to it was read.
type ParcelCache interface {
	GetParcel(ctx context.Context, id string) (*model.Parcel, error)
	ParcelVersion(ctx context.Context, id string) (int64, error)
	FillParcel(ctx context.Context, parcel *model.Parcel, version int64) (bool, error)
	DeleteParcel(ctx context.Context, id string) error
	IsNegativelyCached(ctx context.Context, id string) (bool, error)
	SetNegativeCache(ctx context.Context, id string) error
}

// EventPublisher emits lifecycle events without blocking.
type EventPublisher interface {
	PublishAsync(evt events.Event)
}

type noopPublisher struct{}

func (noopPublisher) PublishAsync(events.Event) {}

func requireID(id string) error {
	if !model.IsValidID(id) {
		return ErrInvalidID
	}
	return nil
}
