package loads

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/haulhub-backend/pkg/db/models"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	"github.com/angelmondragon/haulhub-backend/pkg/pagination"
)

func setupLoadsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS loads (
  id TEXT PRIMARY KEY,
  shipper_id TEXT NOT NULL,
  tracking_code TEXT NOT NULL UNIQUE,
  origin TEXT NOT NULL,
  destination TEXT NOT NULL,
  cargo_type TEXT NOT NULL,
  weight_kg INTEGER NOT NULL DEFAULT 0,
  pickup_date DATETIME,
  status TEXT NOT NULL DEFAULT 'posted',
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedLoad(t *testing.T, db *gorm.DB, shipperID uuid.UUID, status enums.LoadStatus, createdAt time.Time) models.Load {
	t.Helper()
	load := models.Load{
		ID:           uuid.New(),
		ShipperID:    shipperID,
		TrackingCode: "HHL2026" + uuid.NewString()[:6],
		Origin:       "Laredo, TX",
		Destination:  "Monterrey, NL",
		CargoType:    "produce",
		WeightKG:     18000,
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	require.NoError(t, db.Create(&load).Error)
	return load
}

func TestRepository_UpdateStatusIfGuards(t *testing.T) {
	db := setupLoadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	load := seedLoad(t, db, uuid.New(), enums.LoadStatusPosted, time.Now().UTC())

	ok, err := repo.UpdateStatusIf(ctx, load.ID, enums.LoadStatusInTransit, enums.LoadStatusPosted)
	require.NoError(t, err)
	assert.True(t, ok)

	// second flip loses the guard
	ok, err = repo.UpdateStatusIf(ctx, load.ID, enums.LoadStatusInTransit, enums.LoadStatusPosted)
	require.NoError(t, err)
	assert.False(t, ok)

	var reloaded models.Load
	require.NoError(t, db.First(&reloaded, "id = ?", load.ID).Error)
	assert.Equal(t, enums.LoadStatusInTransit, reloaded.Status)
}

func TestRepository_UpdateStatusIfAcceptsMultipleFromStates(t *testing.T) {
	db := setupLoadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	load := seedLoad(t, db, uuid.New(), enums.LoadStatusPending, time.Now().UTC())

	ok, err := repo.UpdateStatusIf(ctx, load.ID, enums.LoadStatusCancelled,
		enums.LoadStatusPosted, enums.LoadStatusPending)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepository_ListFiltersByShipperAndStatus(t *testing.T) {
	db := setupLoadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shipperID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	mine := seedLoad(t, db, shipperID, enums.LoadStatusPosted, base)
	seedLoad(t, db, shipperID, enums.LoadStatusCancelled, base.Add(time.Minute))
	seedLoad(t, db, uuid.New(), enums.LoadStatusPosted, base.Add(2*time.Minute))

	rows, next, err := repo.List(ctx, ListQuery{
		ShipperID: &shipperID,
		Statuses:  []enums.LoadStatus{enums.LoadStatusPosted},
	})
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)
}

func TestRepository_ListPaginatesNewestFirst(t *testing.T) {
	db := setupLoadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shipperID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	oldest := seedLoad(t, db, shipperID, enums.LoadStatusPosted, base)
	middle := seedLoad(t, db, shipperID, enums.LoadStatusPosted, base.Add(time.Minute))
	newest := seedLoad(t, db, shipperID, enums.LoadStatusPosted, base.Add(2*time.Minute))

	first, next, err := repo.List(ctx, ListQuery{ShipperID: &shipperID, Limit: 2})
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Len(t, first, 2)
	assert.Equal(t, newest.ID, first[0].ID)
	assert.Equal(t, middle.ID, first[1].ID)

	second, final, err := repo.List(ctx, ListQuery{
		ShipperID: &shipperID,
		Limit:     2,
		Cursor:    &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID},
	})
	require.NoError(t, err)
	assert.Nil(t, final)
	require.Len(t, second, 1)
	assert.Equal(t, oldest.ID, second[0].ID)
}

func TestRepository_FindByTrackingCode(t *testing.T) {
	db := setupLoadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	load := seedLoad(t, db, uuid.New(), enums.LoadStatusPosted, time.Now().UTC())

	found, err := repo.FindByTrackingCode(ctx, load.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, load.ID, found.ID)

	_, err = repo.FindByTrackingCode(ctx, "HHL2026XXXXXX")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_DeleteReportsMissingRow(t *testing.T) {
	db := setupLoadsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	load := seedLoad(t, db, uuid.New(), enums.LoadStatusPosted, time.Now().UTC())

	ok, err := repo.Delete(ctx, load.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, load.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
