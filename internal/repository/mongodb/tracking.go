package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parceltrack/parceltrack/internal/model"
)

// CreateTrackingUpdate appends a tracking update.
func (r *Repository) CreateTrackingUpdate(ctx context.Context, update *model.TrackingUpdate) error {
	oid, err := objectID(update.ID)
	if err != nil {
		return err
	}

	doc := trackingDoc{
		ID:        oid,
		ParcelID:  update.ParcelID,
		Status:    update.Status,
		Note:      update.Note,
		UpdatedBy: update.UpdatedBy,
		UpdatedAt: update.UpdatedAt,
	}

	if _, err := r.trackingUpdates().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create tracking update: %w", err)
	}

	return nil
}

// ListTrackingUpdates returns a parcel's updates newest first.
func (r *Repository) ListTrackingUpdates(ctx context.Context, parcelID string) ([]*model.TrackingUpdate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: fieldID, Value: -1}})

	cursor, err := r.trackingUpdates().Find(ctx, bson.M{"parcelId": parcelID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking updates: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []trackingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tracking updates: %w", err)
	}

	updates := make([]*model.TrackingUpdate, 0, len(docs))
	for _, d := range docs {
		updates = append(updates, &model.TrackingUpdate{
			ID:        d.ID.Hex(),
			ParcelID:  d.ParcelID,
			Status:    d.Status,
			Note:      d.Note,
			UpdatedBy: d.UpdatedBy,
			UpdatedAt: d.UpdatedAt.UTC(),
		})
	}

	return updates, nil
}
