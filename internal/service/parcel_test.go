package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parceltrack/parceltrack/internal/events"
	"github.com/parceltrack/parceltrack/internal/metrics"
	"github.com/parceltrack/parceltrack/internal/model"
	"github.com/parceltrack/parceltrack/internal/repository"
	"github.com/parceltrack/parceltrack/internal/repository/memory"
)

func newParcelService(t *testing.T) (*ParcelService, *memory.Repository, *fakeCache, *fakePublisher, *metrics.InMemoryRecorder) {
	t.Helper()
	repo := memory.New()
	c := newFakeCache()
	pub := &fakePublisher{}
	rec := metrics.NewInMemory()
	return NewParcelService(repo, c, pub, rec, testLogger()), repo, c, pub, rec
}

func TestParcelService_CreateParcel_Defaults(t *testing.T) {
	svc, _, _, pub, rec := newParcelService(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	parcel, err := svc.CreateParcel(ctx, map[string]any{"created_by": "a@x.com", "weight": 2.0})
	require.NoError(t, err)

	assert.True(t, model.IsValidID(parcel.ID))
	assert.Equal(t, model.PaymentStatusUnpaid, parcel.PaymentStatus)
	assert.True(t, parcel.CreatedAt.After(before))
	assert.Equal(t, 2.0, parcel.Attributes["weight"])
	assert.Equal(t, []events.Type{events.TypeParcelCreated}, pub.types())
	assert.Equal(t, uint64(1), rec.Snapshot().ParcelsCreated)
}

func TestParcelService_CreateParcel_KeepsCallerFields(t *testing.T) {
	svc, _, _, _, _ := newParcelService(t)

	parcel, err := svc.CreateParcel(context.Background(), map[string]any{
		"createdAt":     "2024-03-01T08:00:00Z",
		"paymentStatus": "pending",
		"_id":           "forged",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), parcel.CreatedAt)
	assert.Equal(t, model.PaymentStatus("pending"), parcel.PaymentStatus)
	assert.NotEqual(t, "forged", parcel.ID)
}

func TestParcelService_CreateParcel_EpochMillisCreatedAt(t *testing.T) {
	svc, _, _, _, _ := newParcelService(t)

	parcel, err := svc.CreateParcel(context.Background(), map[string]any{"createdAt": float64(1740823200000)})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), parcel.CreatedAt)
}

func TestParcelService_CreateParcel_RejectsMistypedKnownFields(t *testing.T) {
	svc, repo, _, pub, _ := newParcelService(t)
	ctx := context.Background()

	for _, fields := range []map[string]any{
		{"createdAt": "yesterday"},
		{"createdAt": map[string]any{"$date": "2025-03-01"}},
		{"created_by": 42.0},
		{"paymentStatus": []any{"paid"}},
	} {
		_, err := svc.CreateParcel(ctx, fields)
		assert.ErrorIs(t, err, ErrInvalidField, "fields=%v", fields)
	}

	all, err := repo.ListParcels(ctx, repository.ParcelFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, pub.types())
}

func TestParcelService_CreateParcel_EmptyBody(t *testing.T) {
	svc, _, _, _, _ := newParcelService(t)

	parcel, err := svc.CreateParcel(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, parcel.ID)
}

func TestParcelService_GetParcel_InvalidID(t *testing.T) {
	repo := memory.New()
	store := &countingParcelStore{ParcelStore: repo}
	svc := NewParcelService(store, nil, nil, nil, testLogger())

	_, err := svc.GetParcel(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.Equal(t, 0, store.readCount())
}

func TestParcelService_GetParcel_NotFound(t *testing.T) {
	svc, _, c, _, _ := newParcelService(t)
	id := model.NewID()

	_, err := svc.GetParcel(context.Background(), id)
	assert.ErrorIs(t, err, ErrParcelNotFound)

	neg, _ := c.IsNegativelyCached(context.Background(), id)
	assert.True(t, neg)
}

func TestParcelService_GetParcel_ReadThrough(t *testing.T) {
	repo := memory.New()
	store := &countingParcelStore{ParcelStore: repo}
	c := newFakeCache()
	rec := metrics.NewInMemory()
	svc := NewParcelService(store, c, nil, rec, testLogger())
	ctx := context.Background()

	created, err := svc.CreateParcel(ctx, map[string]any{"created_by": "a@x.com"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := svc.GetParcel(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	}

	assert.Equal(t, 1, store.readCount())
	snap := rec.Snapshot()
	assert.Equal(t, uint64(1), snap.ParcelCacheMisses)
	assert.Equal(t, uint64(2), snap.ParcelCacheHits)
}

func TestParcelService_GetParcel_NoCache(t *testing.T) {
	svc := NewParcelService(memory.New(), nil, nil, nil, testLogger())
	ctx := context.Background()

	created, err := svc.CreateParcel(ctx, map[string]any{"created_by": "a@x.com"})
	require.NoError(t, err)

	got, err := svc.GetParcel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.CreatedBy)
}

func TestParcelService_ListParcels(t *testing.T) {
	svc, _, _, _, _ := newParcelService(t)
	ctx := context.Background()

	for _, f := range []map[string]any{
		{"created_by": "a@x.com", "createdAt": "2024-01-01T00:00:00Z"},
		{"created_by": "a@x.com", "createdAt": "2024-02-01T00:00:00Z"},
		{"created_by": "b@x.com"},
	} {
		_, err := svc.CreateParcel(ctx, f)
		require.NoError(t, err)
	}

	mine, err := svc.ListParcels(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].CreatedAt.After(mine[1].CreatedAt))

	all, err := svc.ListParcels(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := svc.ListParcels(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestParcelService_DeleteParcel(t *testing.T) {
	svc, _, c, pub, rec := newParcelService(t)
	ctx := context.Background()

	created, err := svc.CreateParcel(ctx, map[string]any{"created_by": "a@x.com"})
	require.NoError(t, err)
	_, err = svc.GetParcel(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, c.has(created.ID))

	n, err := svc.DeleteParcel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, c.has(created.ID))

	_, err = svc.GetParcel(ctx, created.ID)
	assert.ErrorIs(t, err, ErrParcelNotFound)

	n, err = svc.DeleteParcel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.Equal(t, uint64(1), rec.Snapshot().ParcelsDeleted)
	assert.Equal(t, []events.Type{events.TypeParcelCreated, events.TypeParcelDeleted}, pub.types())
}

func TestParcelService_DeleteParcel_InvalidID(t *testing.T) {
	svc, _, _, _, _ := newParcelService(t)

	_, err := svc.DeleteParcel(context.Background(), "xyz")
	assert.ErrorIs(t, err, ErrInvalidID)
}
