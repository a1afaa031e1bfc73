package model

import "time"

// Payment is the receipt of a completed charge against a parcel.
type Payment struct {
	ID            string    `json:"_id"`
	ParcelID      string    `json:"parcelId"`
	UserEmail     string    `json:"userEmail"`
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transactionId"`
	PaymentMethod string    `json:"paymentMethod"`
	PaidAt        time.Time `json:"paid_at"`
	PaidAtString  string    `json:"paid_at_string"`
}

// StampPaidAt sets PaidAt and its string rendering.
func (p *Payment) StampPaidAt(t time.Time) {
	p.PaidAt = t.UTC()
	p.PaidAtString = p.PaidAt.Format(time.RFC3339)
}
