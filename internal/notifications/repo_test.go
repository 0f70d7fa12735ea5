package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time, read bool) models.Notification {
	t.Helper()
	n := models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeOfferApproved,
		Title:     "Offer approved",
		Message:   "A provider offer was approved",
		IsRead:    read,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&n).Error)
	return n
}

func TestRepository_ListOrdersNewestFirst(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	old := seedNotification(t, db, userID, time.Now().Add(-2*time.Hour), false)
	recent := seedNotification(t, db, userID, time.Now().Add(-time.Minute), false)
	seedNotification(t, db, uuid.New(), time.Now(), false) // other user

	rows, next, err := repo.List(context.Background(), listNotificationsParams{UserID: userID, Limit: 10})
	require.NoError(t, err)
	require.Nil(t, next)
	require.Len(t, rows, 2)
	require.Equal(t, recent.ID, rows[0].ID)
	require.Equal(t, old.ID, rows[1].ID)
}

func TestRepository_ListUnreadOnly(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	seedNotification(t, db, userID, time.Now().Add(-time.Hour), true)
	unread := seedNotification(t, db, userID, time.Now(), false)

	rows, _, err := repo.List(context.Background(), listNotificationsParams{UserID: userID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, unread.ID, rows[0].ID)
}

func TestRepository_MarkRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	n := seedNotification(t, db, userID, time.Now(), false)

	result, err := repo.MarkRead(context.Background(), userID, n.ID)
	require.NoError(t, err)
	require.True(t, result.Found)
	require.True(t, result.Updated)

	// Second call finds the row but updates nothing.
	result, err = repo.MarkRead(context.Background(), userID, n.ID)
	require.NoError(t, err)
	require.True(t, result.Found)
	require.False(t, result.Updated)
}

func TestRepository_MarkReadWrongUser(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	n := seedNotification(t, db, uuid.New(), time.Now(), false)

	result, err := repo.MarkRead(context.Background(), uuid.New(), n.ID)
	require.NoError(t, err)
	require.False(t, result.Found)
}

func TestRepository_MarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	seedNotification(t, db, userID, time.Now().Add(-time.Hour), false)
	seedNotification(t, db, userID, time.Now(), false)
	seedNotification(t, db, userID, time.Now(), true)

	count, err := repo.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}
