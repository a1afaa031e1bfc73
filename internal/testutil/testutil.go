// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parceltrack/parceltrack/internal/migrate"
	"github.com/parceltrack/parceltrack/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// DropPostgresSchema drops every application table, leaving an empty database.
func DropPostgresSchema(ctx context.Context, databaseURL string) error {
	db, err := migrate.Open(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	drop := `DROP TABLE IF EXISTS payments, tracking_updates, parcels, users, schema_migrations`
	if _, err := db.ExecContext(ctx, drop); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}

	return nil
}

// ResetPostgresSchema drops every application table and reapplies the embedded migrations.
func ResetPostgresSchema(ctx context.Context, databaseURL string) error {
	if err := DropPostgresSchema(ctx, databaseURL); err != nil {
		return err
	}

	db, err := migrate.Open(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := migrate.Up(ctx, db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Int64

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@test.local", prefix, time.Now().UnixNano(), seq.Add(1))
}

// NewTestParcel creates an unpaid parcel with sensible defaults.
func NewTestParcel(t testing.TB, createdBy string) *model.Parcel {
	t.Helper()
	return &model.Parcel{
		ID:            model.NewID(),
		CreatedBy:     createdBy,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
		PaymentStatus: model.PaymentStatusUnpaid,
		Attributes: model.Attributes{
			"parcelName":   "Documents",
			"receiverName": "Test Receiver",
			"cost":         150.0,
		},
	}
}

// NewTestPayment creates a payment for the given parcel.
func NewTestPayment(t testing.TB, parcelID, email string) *model.Payment {
	t.Helper()
	p := &model.Payment{
		ID:            model.NewID(),
		ParcelID:      parcelID,
		UserEmail:     email,
		Amount:        150,
		TransactionID: fmt.Sprintf("pi_test_%d", seq.Add(1)),
		PaymentMethod: "card",
	}
	p.StampPaidAt(time.Now().Truncate(time.Millisecond))
	return p
}
