package notifications

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
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  recipient_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  priority TEXT NOT NULL DEFAULT 'normal',
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  link TEXT,
  load_id TEXT,
  bid_id TEXT,
  actor_id TEXT,
  read INTEGER NOT NULL DEFAULT 0,
  read_at DATETIME,
  expires_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, recipient uuid.UUID, read bool, expiresAt *time.Time, createdAt time.Time) models.Notification {
	t.Helper()
	row := models.Notification{
		ID:          uuid.New(),
		RecipientID: recipient,
		Kind:        enums.NotificationKindSystem,
		Priority:    enums.NotificationPriorityLow,
		Title:       "System notice",
		Message:     "test",
		Read:        read,
		ExpiresAt:   expiresAt,
		CreatedAt:   createdAt,
	}
	if read {
		at := createdAt
		row.ReadAt = &at
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestRepository_ListExcludesExpired(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	live := seedNotification(t, db, recipient, false, &future, now.Add(-time.Minute))
	seedNotification(t, db, recipient, false, &past, now.Add(-2*time.Minute))
	noExpiry := seedNotification(t, db, recipient, false, nil, now.Add(-3*time.Minute))

	rows, next, err := repo.List(ctx, listNotificationsParams{
		RecipientID: recipient,
		Limit:       10,
		Now:         now,
	})
	require.NoError(t, err)
	assert.Nil(t, next)
	require.Len(t, rows, 2)
	assert.Equal(t, live.ID, rows[0].ID)
	assert.Equal(t, noExpiry.ID, rows[1].ID)
}

func TestRepository_MarkReadIdempotent(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	now := time.Now().UTC()
	row := seedNotification(t, db, recipient, false, nil, now)

	first, err := repo.MarkRead(ctx, recipient, row.ID, now)
	require.NoError(t, err)
	assert.True(t, first.Found)
	assert.True(t, first.Updated)

	second, err := repo.MarkRead(ctx, recipient, row.ID, now)
	require.NoError(t, err)
	assert.True(t, second.Found)
	assert.False(t, second.Updated)

	missing, err := repo.MarkRead(ctx, recipient, uuid.New(), now)
	require.NoError(t, err)
	assert.False(t, missing.Found)
}

func TestRepository_MarkReadScopedToRecipient(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	other := uuid.New()
	now := time.Now().UTC()
	row := seedNotification(t, db, owner, false, nil, now)

	result, err := repo.MarkRead(ctx, other, row.ID, now)
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestRepository_MarkAllReadCountsOnlyUnread(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	now := time.Now().UTC()
	seedNotification(t, db, recipient, false, nil, now)
	seedNotification(t, db, recipient, false, nil, now)
	seedNotification(t, db, recipient, true, nil, now)

	count, err := repo.MarkAllRead(ctx, recipient, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	again, err := repo.MarkAllRead(ctx, recipient, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), again)
}

func TestRepository_DeleteAllReadAndExpired(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	recipient := uuid.New()
	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	seedNotification(t, db, recipient, true, nil, now)
	unread := seedNotification(t, db, recipient, false, nil, now)
	seedNotification(t, db, recipient, false, &past, now)

	deleted, err := repo.DeleteAllRead(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	expired, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	unreadCount, err := repo.CountUnread(ctx, recipient, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unreadCount)

	ok, err := repo.Delete(ctx, recipient, unread.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, recipient, unread.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
