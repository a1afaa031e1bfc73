package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/repository"
)

const parcelColumns = `id, created_by, payment_status, attributes, created_at`

// CreateParcel inserts a new parcel into the database.
func (r *Repository) CreateParcel(ctx context.Context, parcel *model.Parcel) error {
	query := `
		INSERT INTO parcels (` + parcelColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		parcel.ID,
		parcel.CreatedBy,
		string(parcel.PaymentStatus),
		attributesOrEmpty(parcel.Attributes),
		parcel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create parcel: %w", err)
	}

	return nil
}

// GetParcelByID retrieves a parcel by its ID.
func (r *Repository) GetParcelByID(ctx context.Context, id string) (*model.Parcel, error) {
	query := `SELECT ` + parcelColumns + ` FROM parcels WHERE id = $1`

	parcel, err := scanParcel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get parcel by ID: %w", err)
	}

	return parcel, nil
}

// ListParcels retrieves parcels newest first, optionally by creator.
func (r *Repository) ListParcels(ctx context.Context, filter repository.ParcelFilter) ([]*model.Parcel, error) {
	query := `SELECT ` + parcelColumns + ` FROM parcels`
	args := []any{}

	if filter.CreatedBy != "" {
		query += ` WHERE created_by = $1`
		args = append(args, filter.CreatedBy)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	defer rows.Close()

	parcels := make([]*model.Parcel, 0)
	for rows.Next() {
		parcel, err := scanParcel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parcel: %w", err)
		}
		parcels = append(parcels, parcel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcels: %w", err)
	}

	return parcels, nil
}

// DeleteParcel removes a parcel and reports how many rows went away.
func (r *Repository) DeleteParcel(ctx context.Context, id string) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM parcels WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete parcel: %w", err)
	}

	return result.RowsAffected(), nil
}

// scanParcel scans a single row into a Parcel model.
// pgx.Rows satisfies pgx.Row, so this serves both QueryRow and Query.
func scanParcel(row pgx.Row) (*model.Parcel, error) {
	var parcel model.Parcel
	var status string
	var attrs map[string]any

	err := row.Scan(
		&parcel.ID,
		&parcel.CreatedBy,
		&status,
		&attrs,
		&parcel.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	parcel.PaymentStatus = model.PaymentStatus(status)
	parcel.Attributes = attrs
	return &parcel, nil
}
