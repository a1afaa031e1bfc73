package service

import (
	"context"
	"fmt"
	"time"

	"github.com/parceltrack/parceltrack/internal/events"
	"github.com/parceltrack/parceltrack/internal/metrics"
	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/repository"
)

// TrackingService appends to and reads the tracking ledger.
type TrackingService struct {
	updates   repository.TrackingStore
	publisher EventPublisher
	metrics   metrics.Recorder
}

// NewTrackingService creates a new TrackingService.
func NewTrackingService(updates repository.TrackingStore, publisher EventPublisher, recorder metrics.Recorder) *TrackingService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &TrackingService{
		updates:   updates,
		publisher: publisher,
		metrics:   recorder,
	}
}

// AddUpdateInput defines input for a tracking update.
type AddUpdateInput struct {
	ParcelID  string
	Status    string
	Note      string
	UpdatedBy string
}

// AddUpdate records a status note against a parcel.
// The parcel is referenced by ID only and need not exist.
func (s *TrackingService) AddUpdate(ctx context.Context, input AddUpdateInput) (*model.TrackingUpdate, error) {
	if input.ParcelID == "" || input.Status == "" {
		return nil, ErrMissingTrackingFields
	}
	if err := requireID(input.ParcelID); err != nil {
		return nil, err
	}

	updatedBy := input.UpdatedBy
	if updatedBy == "" {
		updatedBy = model.DefaultUpdatedBy
	}

	update := &model.TrackingUpdate{
		ID:        model.NewID(),
		ParcelID:  input.ParcelID,
		Status:    input.Status,
		Note:      input.Note,
		UpdatedBy: updatedBy,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.updates.CreateTrackingUpdate(ctx, update); err != nil {
		return nil, fmt.Errorf("failed to create tracking update: %w", err)
	}

	s.metrics.IncTrackingUpdate()
	s.publisher.PublishAsync(events.New(events.TypeTrackingUpdated, update.ParcelID, map[string]any{
		"status":     update.Status,
		"updated_by": update.UpdatedBy,
	}))

	return update, nil
}

// ListUpdates returns a parcel's updates newest first.
func (s *TrackingService) ListUpdates(ctx context.Context, parcelID string) ([]*model.TrackingUpdate, error) {
	if err := requireID(parcelID); err != nil {
		return nil, err
	}
	return s.updates.ListTrackingUpdates(ctx, parcelID)
}
