package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/repository"
)

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var doc bson.M
	err := r.users().FindOne(ctx, bson.M{fieldEmail: email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return userFromDoc(doc), nil
}

// CreateUser inserts a user. The unique email index turns races into ErrDuplicateEmail.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	doc, err := userToDoc(user)
	if err != nil {
		return err
	}

	if _, err := r.users().InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}
