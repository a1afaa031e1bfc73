// Package model defines domain entities for the application.
package model

import (
	"encoding/json"
	"time"
)

// Wire and document field names for users.
const (
	UserFieldID        = "_id"
	UserFieldEmail     = "email"
	UserFieldCreatedAt = "created_at"
)

// User is a registered account keyed by email.
// Profile fields supplied at registration are kept in Attributes.
type User struct {
	ID         string
	Email      string
	CreatedAt  time.Time
	Attributes Attributes
}

// UserFromFields builds a user from a registration payload.
func UserFromFields(fields map[string]any) *User {
	doc := Attributes(fields).Without(UserFieldID, UserFieldCreatedAt)
	if doc == nil {
		doc = Attributes{}
	}

	return &User{
		Email:      stringField(doc, UserFieldEmail),
		Attributes: doc,
	}
}

// MarshalJSON flattens attributes and known fields into one object.
func (u User) MarshalJSON() ([]byte, error) {
	return marshalFlat(u.Attributes, map[string]any{
		UserFieldID:        u.ID,
		UserFieldEmail:     u.Email,
		UserFieldCreatedAt: u.CreatedAt,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (u *User) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	user := &User{
		ID:        stringField(doc, UserFieldID),
		Email:     stringField(doc, UserFieldEmail),
		CreatedAt: timeField(doc, UserFieldCreatedAt),
	}
	if len(doc) > 0 {
		user.Attributes = doc
	}
	*u = *user
	return nil
}
