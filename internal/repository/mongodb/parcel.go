package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/repository"
)

// CreateParcel inserts a parcel document.
func (r *Repository) CreateParcel(ctx context.Context, parcel *model.Parcel) error {
	doc, err := parcelToDoc(parcel)
	if err != nil {
		return err
	}

	if _, err := r.parcels().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create parcel: %w", err)
	}

	return nil
}

// GetParcelByID retrieves a parcel by ID.
func (r *Repository) GetParcelByID(ctx context.Context, id string) (*model.Parcel, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = r.parcels().FindOne(ctx, bson.M{fieldID: oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get parcel by ID: %w", err)
	}

	return parcelFromDoc(doc), nil
}

// ListParcels returns parcels newest first, optionally by creator.
func (r *Repository) ListParcels(ctx context.Context, filter repository.ParcelFilter) ([]*model.Parcel, error) {
	query := bson.M{}
	if filter.CreatedBy != "" {
		query[fieldCreatedBy] = filter.CreatedBy
	}

	opts := options.Find().SetSort(bson.D{{Key: fieldCreatedAt, Value: -1}, {Key: fieldID, Value: -1}})

	cursor, err := r.parcels().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	defer cursor.Close(ctx)

	parcels := make([]*model.Parcel, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode parcel: %w", err)
		}
		parcels = append(parcels, parcelFromDoc(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcels: %w", err)
	}

	return parcels, nil
}

// DeleteParcel removes a parcel and reports the deleted count.
func (r *Repository) DeleteParcel(ctx context.Context, id string) (int64, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}

	res, err := r.parcels().DeleteOne(ctx, bson.M{fieldID: oid})
	if err != nil {
		return 0, fmt.Errorf("failed to delete parcel: %w", err)
	}

	return res.DeletedCount, nil
}
