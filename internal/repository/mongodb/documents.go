package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parceltrack/parceltrack/internal/model"
)

// Field names shared with the JSON wire format.
const (
	fieldID            = "_id"
	fieldEmail         = model.UserFieldEmail
	fieldUserCreatedAt = model.UserFieldCreatedAt
	fieldCreatedBy     = model.ParcelFieldCreatedBy
	fieldCreatedAt     = model.ParcelFieldCreatedAt
	fieldPaymentStatus = model.ParcelFieldPaymentStatus
)

type trackingDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	ParcelID  string             `bson:"parcelId"`
	Status    string             `bson:"status"`
	Note      string             `bson:"note"`
	UpdatedBy string             `bson:"updated_by"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type paymentDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	ParcelID      string             `bson:"parcelId"`
	UserEmail     string             `bson:"userEmail"`
	Amount        float64            `bson:"amount"`
	TransactionID string             `bson:"transactionId"`
	PaymentMethod string             `bson:"paymentMethod"`
	PaidAt        time.Time          `bson:"paid_at"`
	PaidAtString  string             `bson:"paid_at_string"`
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid object id %q: %w", id, err)
	}
	return oid, nil
}

// flatten merges attributes and known fields into one document. Known fields win.
func flatten(attrs model.Attributes, fixed bson.M) bson.M {
	doc := make(bson.M, len(attrs)+len(fixed))
	for k, v := range attrs {
		doc[k] = v
	}
	for k, v := range fixed {
		doc[k] = v
	}
	return doc
}

func parcelToDoc(p *model.Parcel) (bson.M, error) {
	oid, err := objectID(p.ID)
	if err != nil {
		return nil, err
	}

	fixed := bson.M{
		fieldID:            oid,
		fieldCreatedAt:     p.CreatedAt,
		fieldPaymentStatus: string(p.PaymentStatus),
	}
	if p.CreatedBy != "" {
		fixed[fieldCreatedBy] = p.CreatedBy
	}

	return flatten(p.Attributes, fixed), nil
}

func parcelFromDoc(doc bson.M) *model.Parcel {
	p := &model.Parcel{
		ID:            popID(doc),
		CreatedBy:     popString(doc, fieldCreatedBy),
		CreatedAt:     popTime(doc, fieldCreatedAt),
		PaymentStatus: model.PaymentStatus(popString(doc, fieldPaymentStatus)),
	}
	if len(doc) > 0 {
		p.Attributes = model.Attributes(doc)
	}
	return p
}

func userToDoc(u *model.User) (bson.M, error) {
	oid, err := objectID(u.ID)
	if err != nil {
		return nil, err
	}

	return flatten(u.Attributes, bson.M{
		fieldID:            oid,
		fieldEmail:         u.Email,
		fieldUserCreatedAt: u.CreatedAt,
	}), nil
}

func userFromDoc(doc bson.M) *model.User {
	u := &model.User{
		ID:        popID(doc),
		Email:     popString(doc, fieldEmail),
		CreatedAt: popTime(doc, fieldUserCreatedAt),
	}
	if len(doc) > 0 {
		u.Attributes = model.Attributes(doc)
	}
	return u
}

func popID(doc bson.M) string {
	v, ok := doc[fieldID]
	if !ok {
		return ""
	}
	delete(doc, fieldID)

	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

func popString(doc bson.M, key string) string {
	v, ok := doc[key]
	if !ok {
		return ""
	}
	delete(doc, key)
	s, _ := v.(string)
	return s
}

// popTime accepts BSON datetimes and legacy RFC3339 strings.
func popTime(doc bson.M, key string) time.Time {
	v, ok := doc[key]
	if !ok {
		return time.Time{}
	}
	delete(doc, key)

	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}
