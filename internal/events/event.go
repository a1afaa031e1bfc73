// Package events publishes parcel lifecycle events to an external sink.
package events

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// Type names a lifecycle event.
type Type string

const (
	TypeParcelCreated   Type = "parcel.created"
	TypeParcelDeleted   Type = "parcel.deleted"
	TypeTrackingUpdated Type = "tracking.updated"
	TypePaymentRecorded Type = "payment.recorded"
)

// Event is the envelope written to every sink.
type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	ParcelID   string         `json:"parcelId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// New builds an event with a fresh ULID and the current time.
func New(typ Type, parcelID string, payload map[string]any) Event {
	return Event{
		ID:         ulid.Make().String(),
		Type:       typ,
		ParcelID:   parcelID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Encode returns the JSON form of the event.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
