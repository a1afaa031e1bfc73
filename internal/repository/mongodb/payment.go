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

// RecordPayment marks the parcel paid and inserts the payment in one
// multi-document transaction. Transactions require a replica set or Atlas cluster.
func (r *Repository) RecordPayment(ctx context.Context, payment *model.Payment) (*repository.ParcelPaymentUpdate, error) {
	parcelOID, err := objectID(payment.ParcelID)
	if err != nil {
		return nil, err
	}
	paymentOID, err := objectID(payment.ID)
	if err != nil {
		return nil, err
	}

	doc := paymentDoc{
		ID:            paymentOID,
		ParcelID:      payment.ParcelID,
		UserEmail:     payment.UserEmail,
		Amount:        payment.Amount,
		TransactionID: payment.TransactionID,
		PaymentMethod: payment.PaymentMethod,
		PaidAt:        payment.PaidAt,
		PaidAtString:  payment.PaidAtString,
	}

	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		upd, err := r.parcels().UpdateOne(sc,
			bson.M{fieldID: parcelOID},
			bson.M{"$set": bson.M{fieldPaymentStatus: string(model.PaymentStatusPaid)}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to mark parcel paid: %w", err)
		}
		if upd.MatchedCount == 0 {
			return nil, repository.ErrNotFound
		}

		if _, err := r.payments().InsertOne(sc, doc); err != nil {
			return nil, fmt.Errorf("failed to insert payment: %w", err)
		}

		return &repository.ParcelPaymentUpdate{
			MatchedCount:  upd.MatchedCount,
			ModifiedCount: upd.ModifiedCount,
		}, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("payment transaction failed: %w", err)
	}

	return result.(*repository.ParcelPaymentUpdate), nil
}

// ListPaymentsByEmail returns a user's payments newest first.
func (r *Repository) ListPaymentsByEmail(ctx context.Context, email string) ([]*model.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "paid_at", Value: -1}, {Key: fieldID, Value: -1}})

	cursor, err := r.payments().Find(ctx, bson.M{"userEmail": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []paymentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}

	payments := make([]*model.Payment, 0, len(docs))
	for _, d := range docs {
		payments = append(payments, &model.Payment{
			ID:            d.ID.Hex(),
			ParcelID:      d.ParcelID,
			UserEmail:     d.UserEmail,
			Amount:        d.Amount,
			TransactionID: d.TransactionID,
			PaymentMethod: d.PaymentMethod,
			PaidAt:        d.PaidAt.UTC(),
			PaidAtString:  d.PaidAtString,
		})
	}

	return payments, nil
}
