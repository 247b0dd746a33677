package bids

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/haulhub-backend/pkg/db/models"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
)

func setupBidsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS bids (
  id TEXT PRIMARY KEY,
  load_id TEXT NOT NULL,
  carrier_id TEXT NOT NULL,
  price NUMERIC NOT NULL,
  platform_fee NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  vehicle_id TEXT,
  notes TEXT,
  pickup_at DATETIME,
  delivered_at DATETIME,
  progress INTEGER NOT NULL DEFAULT 0,
  location_note TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedBid(t *testing.T, db *gorm.DB, loadID, carrierID uuid.UUID, status enums.BidStatus) models.Bid {
	t.Helper()
	bid := models.Bid{
		ID:          uuid.New(),
		LoadID:      loadID,
		CarrierID:   carrierID,
		Price:       decimal.RequireFromString("100.00"),
		PlatformFee: decimal.RequireFromString("10.00"),
		Total:       decimal.RequireFromString("110.00"),
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&bid).Error)
	return bid
}

func TestRepository_UpdateStatusIfGuards(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	bid := seedBid(t, db, uuid.New(), uuid.New(), enums.BidStatusPending)

	ok, err := repo.UpdateStatusIf(ctx, bid.ID, enums.BidStatusConfirmed, nil, enums.BidStatusPending)
	require.NoError(t, err)
	assert.True(t, ok)

	// second confirm loses the guard
	ok, err = repo.UpdateStatusIf(ctx, bid.ID, enums.BidStatusConfirmed, nil, enums.BidStatusPending)
	require.NoError(t, err)
	assert.False(t, ok)

	var reloaded models.Bid
	require.NoError(t, db.First(&reloaded, "id = ?", bid.ID).Error)
	assert.Equal(t, enums.BidStatusConfirmed, reloaded.Status)
}

func TestRepository_UpdateStatusIfAppliesExtraColumns(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	bid := seedBid(t, db, uuid.New(), uuid.New(), enums.BidStatusConfirmed)
	pickup := time.Now().UTC().Truncate(time.Second)

	ok, err := repo.UpdateStatusIf(ctx, bid.ID, enums.BidStatusInTransit,
		map[string]any{"pickup_at": pickup, "progress": 10},
		enums.BidStatusConfirmed)
	require.NoError(t, err)
	assert.True(t, ok)

	var reloaded models.Bid
	require.NoError(t, db.First(&reloaded, "id = ?", bid.ID).Error)
	assert.Equal(t, enums.BidStatusInTransit, reloaded.Status)
	require.NotNil(t, reloaded.PickupAt)
	assert.Equal(t, pickup.Unix(), reloaded.PickupAt.Unix())
	assert.Equal(t, 10, reloaded.Progress)
}

func TestRepository_CancelPendingSiblingsSparesWinner(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	loadID := uuid.New()
	winner := seedBid(t, db, loadID, uuid.New(), enums.BidStatusConfirmed)
	loserA := seedBid(t, db, loadID, uuid.New(), enums.BidStatusPending)
	loserB := seedBid(t, db, loadID, uuid.New(), enums.BidStatusPending)
	withdrawn := seedBid(t, db, loadID, uuid.New(), enums.BidStatusCancelled)

	losers, err := repo.CancelPendingSiblings(ctx, loadID, winner.ID)
	require.NoError(t, err)
	require.Len(t, losers, 2)

	loserIDs := map[uuid.UUID]bool{loserA.ID: true, loserB.ID: true}
	for _, loser := range losers {
		assert.True(t, loserIDs[loser.ID], "unexpected loser %s", loser.ID)
	}

	var statuses []models.Bid
	require.NoError(t, db.Find(&statuses, "load_id = ?", loadID).Error)
	for _, row := range statuses {
		switch row.ID {
		case winner.ID:
			assert.Equal(t, enums.BidStatusConfirmed, row.Status)
			assert.Nil(t, row.Notes)
		case withdrawn.ID:
			assert.Equal(t, enums.BidStatusCancelled, row.Status)
		default:
			assert.Equal(t, enums.BidStatusCancelled, row.Status)
			require.NotNil(t, row.Notes)
			assert.Equal(t, siblingCancelNote, *row.Notes)
		}
	}
}

func TestRepository_CancelActiveForLoad(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	loadID := uuid.New()
	booked := seedBid(t, db, loadID, uuid.New(), enums.BidStatusInTransit)
	done := seedBid(t, db, loadID, uuid.New(), enums.BidStatusCompleted)
	released := seedBid(t, db, loadID, uuid.New(), enums.BidStatusCancelled)

	bookings, err := repo.CancelActiveForLoad(ctx, nil, loadID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, booked.ID, bookings[0].ID)

	var reloaded models.Bid
	require.NoError(t, db.First(&reloaded, "id = ?", booked.ID).Error)
	assert.Equal(t, enums.BidStatusCancelled, reloaded.Status)

	// completed and already-cancelled rows are untouched
	var reloadedDone models.Bid
	require.NoError(t, db.First(&reloadedDone, "id = ?", done.ID).Error)
	assert.Equal(t, enums.BidStatusCompleted, reloadedDone.Status)
	var reloadedReleased models.Bid
	require.NoError(t, db.First(&reloadedReleased, "id = ?", released.ID).Error)
	assert.Equal(t, enums.BidStatusCancelled, reloadedReleased.Status)
}

func TestRepository_HasPendingForCarrier(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	loadID := uuid.New()
	carrierID := uuid.New()
	seedBid(t, db, loadID, carrierID, enums.BidStatusCancelled)

	has, err := repo.HasPendingForCarrier(ctx, loadID, carrierID)
	require.NoError(t, err)
	assert.False(t, has)

	seedBid(t, db, loadID, carrierID, enums.BidStatusPending)
	has, err = repo.HasPendingForCarrier(ctx, loadID, carrierID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRepository_CancelPendingForLoad(t *testing.T) {
	db := setupBidsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	loadID := uuid.New()
	seedBid(t, db, loadID, uuid.New(), enums.BidStatusPending)
	seedBid(t, db, loadID, uuid.New(), enums.BidStatusPending)
	confirmed := seedBid(t, db, loadID, uuid.New(), enums.BidStatusConfirmed)

	cancelled, err := repo.CancelPendingForLoad(ctx, nil, loadID)
	require.NoError(t, err)
	assert.Len(t, cancelled, 2)

	var reloaded models.Bid
	require.NoError(t, db.First(&reloaded, "id = ?", confirmed.ID).Error)
	assert.Equal(t, enums.BidStatusConfirmed, reloaded.Status)
}
