package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a new document identifier (24 hex chars).
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed document identifier.
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
