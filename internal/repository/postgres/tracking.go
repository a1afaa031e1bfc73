package postgres

import (
	"context"
	"fmt"

	"github.com/parceltrack/parceltrack/internal/model"
)

// CreateTrackingUpdate appends a tracking update.
func (r *Repository) CreateTrackingUpdate(ctx context.Context, update *model.TrackingUpdate) error {
	query := `
		INSERT INTO tracking_updates (id, parcel_id, status, note, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		update.ID,
		update.ParcelID,
		update.Status,
		update.Note,
		update.UpdatedBy,
		update.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tracking update: %w", err)
	}

	return nil
}

// ListTrackingUpdates returns a parcel's updates newest first.
func (r *Repository) ListTrackingUpdates(ctx context.Context, parcelID string) ([]*model.TrackingUpdate, error) {
	query := `
		SELECT id, parcel_id, status, note, updated_by, updated_at
		FROM tracking_updates
		WHERE parcel_id = $1
		ORDER BY updated_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, parcelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking updates: %w", err)
	}
	defer rows.Close()

	updates := make([]*model.TrackingUpdate, 0)
	for rows.Next() {
		var u model.TrackingUpdate
		if err := rows.Scan(&u.ID, &u.ParcelID, &u.Status, &u.Note, &u.UpdatedBy, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tracking update: %w", err)
		}
		updates = append(updates, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracking updates: %w", err)
	}

	return updates, nil
}
