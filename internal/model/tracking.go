package model

import "time"

// DefaultUpdatedBy is recorded when a tracking update names no author.
const DefaultUpdatedBy = "system"

// TrackingUpdate is an append-only status note recorded against a parcel.
// ParcelID is a reference only; the parcel is not required to exist.
type TrackingUpdate struct {
	ID        string    `json:"_id"`
	ParcelID  string    `json:"parcelId"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}
