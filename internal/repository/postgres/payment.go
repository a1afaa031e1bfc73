package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/repository"
)

// RecordPayment flips the parcel to paid and inserts the payment in one transaction.
func (r *Repository) RecordPayment(ctx context.Context, payment *model.Payment) (*repository.ParcelPaymentUpdate, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin payment transaction: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx,
		`SELECT payment_status FROM parcels WHERE id = $1 FOR UPDATE`,
		payment.ParcelID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock parcel: %w", err)
	}

	result := &repository.ParcelPaymentUpdate{MatchedCount: 1}
	if model.PaymentStatus(current) != model.PaymentStatusPaid {
		tag, err := tx.Exec(ctx,
			`UPDATE parcels SET payment_status = $2 WHERE id = $1`,
			payment.ParcelID,
			string(model.PaymentStatusPaid),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to mark parcel paid: %w", err)
		}
		result.ModifiedCount = tag.RowsAffected()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payments (id, parcel_id, user_email, amount, transaction_id, payment_method, paid_at, paid_at_string)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		payment.ID,
		payment.ParcelID,
		payment.UserEmail,
		payment.Amount,
		payment.TransactionID,
		payment.PaymentMethod,
		payment.PaidAt,
		payment.PaidAtString,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment transaction: %w", err)
	}

	return result, nil
}

// ListPaymentsByEmail returns a user's payments newest first.
func (r *Repository) ListPaymentsByEmail(ctx context.Context, email string) ([]*model.Payment, error) {
	query := `
		SELECT id, parcel_id, user_email, amount, transaction_id, payment_method, paid_at, paid_at_string
		FROM payments
		WHERE user_email = $1
		ORDER BY paid_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		err := rows.Scan(
			&p.ID,
			&p.ParcelID,
			&p.UserEmail,
			&p.Amount,
			&p.TransactionID,
			&p.PaymentMethod,
			&p.PaidAt,
			&p.PaidAtString,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}
