package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/parceltrack/parceltrack/internal/cache"
	"github.com/parceltrack/parceltrack/internal/events"
	"github.com/parceltrack/parceltrack/internal/metrics"
	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/repository"
)

// ParcelService handles the parcel registry.
type ParcelService struct {
	parcels   repository.ParcelStore
	cache     ParcelCache
	publisher EventPublisher
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewParcelService creates a new ParcelService. cache and publisher may be nil.
func NewParcelService(parcels repository.ParcelStore, c ParcelCache, publisher EventPublisher, recorder metrics.Recorder, logger *slog.Logger) *ParcelService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &ParcelService{
		parcels:   parcels,
		cache:     c,
		publisher: publisher,
		metrics:   recorder,
		logger:    logger.With("component", "service.parcel"),
	}
}

// CreateParcel stores a parcel built from arbitrary caller fields.
// createdAt may be RFC3339 or epoch milliseconds; paymentStatus defaults to unpaid.
// Known fields of the wrong type are rejected with ErrInvalidField.
func (s *ParcelService) CreateParcel(ctx context.Context, fields map[string]any) (*model.Parcel, error) {
	if err := model.ValidateParcelFields(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidField, err)
	}

	parcel := model.ParcelFromFields(fields)
	parcel.ID = model.NewID()
	if parcel.CreatedAt.IsZero() {
		parcel.CreatedAt = time.Now().UTC()
	}
	if parcel.PaymentStatus == "" {
		parcel.PaymentStatus = model.PaymentStatusUnpaid
	}

	if err := s.parcels.CreateParcel(ctx, parcel); err != nil {
		return nil, fmt.Errorf("failed to create parcel: %w", err)
	}

	s.metrics.IncParcelCreated()
	s.publisher.PublishAsync(events.New(events.TypeParcelCreated, parcel.ID, map[string]any{
		"created_by": parcel.CreatedBy,
	}))

	return parcel, nil
}

// GetParcel retrieves a parcel by ID, cache first.
func (s *ParcelService) GetParcel(ctx context.Context, id string) (*model.Parcel, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}

	fill := false
	var version int64

	if s.cache != nil {
		cached, err := s.cache.GetParcel(ctx, id)
		if err == nil {
			s.metrics.IncParcelCacheHit()
			return cached, nil
		}
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.IncParcelCacheMiss()
			if neg, _ := s.cache.IsNegativelyCached(ctx, id); neg {
				return nil, ErrParcelNotFound
			}
		} else {
			s.logger.Warn("parcel cache read failed", "parcel_id", id, "error", err)
		}

		// Captured before the storage read so a concurrent invalidation wins.
		if version, err = s.cache.ParcelVersion(ctx, id); err != nil {
			s.logger.Warn("parcel cache version read failed", "parcel_id", id, "error", err)
		} else {
			fill = true
		}
	}

	parcel, err := s.parcels.GetParcelByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.cache != nil {
				_ = s.cache.SetNegativeCache(ctx, id)
			}
			return nil, ErrParcelNotFound
		}
		return nil, err
	}

	if fill {
		stored, err := s.cache.FillParcel(ctx, parcel, version)
		if err != nil {
			s.logger.Warn("parcel cache fill failed", "parcel_id", id, "error", err)
		} else if !stored {
			s.logger.Debug("parcel cache fill skipped after invalidation", "parcel_id", id)
		}
	}

	return parcel, nil
}

// ListParcels returns parcels newest first. An empty email lists every parcel.
func (s *ParcelService) ListParcels(ctx context.Context, email string) ([]*model.Parcel, error) {
	return s.parcels.ListParcels(ctx, repository.ParcelFilter{CreatedBy: email})
}

// DeleteParcel removes a parcel. Deleting a missing parcel reports zero and succeeds.
func (s *ParcelService) DeleteParcel(ctx context.Context, id string) (int64, error) {
	if err := requireID(id); err != nil {
		return 0, err
	}

	deleted, err := s.parcels.DeleteParcel(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete parcel: %w", err)
	}

	s.invalidate(ctx, id)

	if deleted > 0 {
		s.metrics.IncParcelDeleted()
		s.publisher.PublishAsync(events.New(events.TypeParcelDeleted, id, nil))
	}

	return deleted, nil
}

func (s *ParcelService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteParcel(ctx, id); err != nil {
		s.logger.Warn("parcel cache invalidation failed", "parcel_id", id, "error", err)
	}
}
