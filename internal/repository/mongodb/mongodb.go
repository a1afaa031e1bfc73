// Package mongodb implements the storage contract on MongoDB.
// Documents are stored flat: caller-supplied fields sit next to the known ones.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/parceltrack/parceltrack/internal/repository"
)

var _ repository.Repository = (*Repository)(nil)

// Repository provides MongoDB access methods.
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, uri, database string) (*Repository, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(2).
		SetServerSelectionTimeout(10 * time.Second).
		// Nested caller fields decode as maps so they encode back to plain JSON.
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Repository{
		client: client,
		db:     client.Database(database),
	}, nil
}

// Ping checks MongoDB connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// Database returns the underlying database handle.
func (r *Repository) Database() *mongo.Database {
	return r.db
}

// EnsureIndexes creates the indexes the service relies on.
// The unique email index is what keeps concurrent registrations from duplicating users.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		repository.CollectionUsers: {
			{
				Keys:    bson.D{{Key: fieldEmail, Value: 1}},
				Options: options.Index().SetUnique(true).SetName("users_email_unique"),
			},
		},
		repository.CollectionParcels: {
			{Keys: bson.D{{Key: fieldCreatedBy, Value: 1}, {Key: fieldCreatedAt, Value: -1}}},
			{Keys: bson.D{{Key: fieldCreatedAt, Value: -1}}},
		},
		repository.CollectionTrackingUpdates: {
			{Keys: bson.D{{Key: "parcelId", Value: 1}, {Key: "updated_at", Value: -1}}},
		},
		repository.CollectionPayments: {
			{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "paid_at", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := r.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}

	return nil
}

func (r *Repository) users() *mongo.Collection {
	return r.db.Collection(repository.CollectionUsers)
}

func (r *Repository) parcels() *mongo.Collection {
	return r.db.Collection(repository.CollectionParcels)
}

func (r *Repository) trackingUpdates() *mongo.Collection {
	return r.db.Collection(repository.CollectionTrackingUpdates)
}

func (r *Repository) payments() *mongo.Collection {
	return r.db.Collection(repository.CollectionPayments)
}
