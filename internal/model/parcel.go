package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// PaymentStatus is the payment state of a parcel.
// Callers may store values outside the known set; they are kept verbatim.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// Wire and document field names for parcels.
const (
	ParcelFieldID            = "_id"
	ParcelFieldCreatedBy     = "created_by"
	ParcelFieldCreatedAt     = "createdAt"
	ParcelFieldPaymentStatus = "paymentStatus"
)

// Parcel is a shipment record. Shipment details live in Attributes.
type Parcel struct {
	ID            string
	CreatedBy     string
	CreatedAt     time.Time
	PaymentStatus PaymentStatus
	Attributes    Attributes
}

// IsPaid reports whether the parcel has been marked paid.
func (p *Parcel) IsPaid() bool {
	return p.PaymentStatus == PaymentStatusPaid
}

// ValidateParcelFields reports a known field whose value cannot be lifted
// into its typed field. Absent and null fields are fine.
func ValidateParcelFields(fields map[string]any) error {
	for _, key := range []string{ParcelFieldCreatedBy, ParcelFieldPaymentStatus} {
		if v := fields[key]; v != nil {
			if _, isString := v.(string); !isString {
				return fmt.Errorf("%s must be a string", key)
			}
		}
	}

	if v := fields[ParcelFieldCreatedAt]; v != nil {
		if _, valid := parseTime(v); !valid {
			return fmt.Errorf("%s must be an RFC3339 timestamp or epoch milliseconds", ParcelFieldCreatedAt)
		}
	}

	return nil
}

// ParcelFromFields builds a parcel from a caller-supplied document.
// Known fields are lifted out; a caller-provided _id is discarded.
// Known fields with values that do not fit stay in Attributes.
func ParcelFromFields(fields map[string]any) *Parcel {
	doc := Attributes(fields).Clone()
	if doc == nil {
		doc = Attributes{}
	}
	delete(doc, ParcelFieldID)

	return &Parcel{
		CreatedBy:     stringField(doc, ParcelFieldCreatedBy),
		CreatedAt:     timeField(doc, ParcelFieldCreatedAt),
		PaymentStatus: PaymentStatus(stringField(doc, ParcelFieldPaymentStatus)),
		Attributes:    doc,
	}
}

// MarshalJSON flattens attributes and known fields into one object.
func (p Parcel) MarshalJSON() ([]byte, error) {
	fixed := map[string]any{
		ParcelFieldID:            p.ID,
		ParcelFieldCreatedAt:     p.CreatedAt,
		ParcelFieldPaymentStatus: p.PaymentStatus,
	}
	if p.CreatedBy != "" {
		fixed[ParcelFieldCreatedBy] = p.CreatedBy
	}
	return marshalFlat(p.Attributes, fixed)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (p *Parcel) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	id := stringField(doc, ParcelFieldID)
	parsed := ParcelFromFields(doc)
	parsed.ID = id
	if len(parsed.Attributes) == 0 {
		parsed.Attributes = nil
	}
	*p = *parsed
	return nil
}
