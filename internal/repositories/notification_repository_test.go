package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/causeconnect/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedNotifications(t *testing.T, db *gorm.DB, recipientID uint, n int) []models.Notification {
	t.Helper()
	repo := NewPostgresNotificationRepository(db)
	out := make([]models.Notification, 0, n)
	for i := 0; i < n; i++ {
		row := &models.Notification{RecipientID: recipientID, Type: models.NotificationLike, Message: "liked"}
		require.NoError(t, repo.CreateNotification(context.Background(), row))
		out = append(out, *row)
	}
	return out
}

func TestCreateNotification_AlwaysUnread(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "ann")

	row := &models.Notification{RecipientID: u.ID, Type: models.NotificationSystem, IsRead: true}
	require.NoError(t, repo.CreateNotification(ctx, row))

	count, err := repo.GetUnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkAsRead_OnlyTouchesOneRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "ann")
	rows := seedNotifications(t, db, u.ID, 3)

	require.NoError(t, repo.MarkAsRead(ctx, rows[1].ID, u.ID))
	require.NoError(t, repo.MarkAsRead(ctx, rows[1].ID, u.ID), "marking twice is harmless")

	count, err := repo.GetUnreadCount(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	unread, total, err := repo.GetByRecipientID(ctx, u.ID, true, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, n := range unread {
		assert.NotEqual(t, rows[1].ID, n.ID)
		assert.False(t, n.IsRead)
	}
}

func TestMarkAsRead_RejectsOtherRecipients(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "ann")
	other := createUser(t, db, "bob")
	rows := seedNotifications(t, db, owner.ID, 1)

	err := repo.MarkAsRead(ctx, rows[0].ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := repo.GetUnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkAllAsRead_OnlyCallersUnreadRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")
	rows := seedNotifications(t, db, a.ID, 3)
	seedNotifications(t, db, b.ID, 2)
	require.NoError(t, repo.MarkAsRead(ctx, rows[0].ID, a.ID))

	updated, err := repo.MarkAllAsRead(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	countA, err := repo.GetUnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, countA)
	countB, err := repo.GetUnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), countB)
}

func TestGetGrouped_BucketsByAge(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "ann")
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{
		now.Add(-time.Hour),
		now.AddDate(0, 0, -1),
		now.AddDate(0, 0, -3),
		now.AddDate(0, 0, -30),
	} {
		require.NoError(t, db.Create(&models.Notification{RecipientID: u.ID, Type: models.NotificationFollow, CreatedAt: at}).Error)
	}

	grouped, err := repo.GetGrouped(ctx, u.ID, now)
	require.NoError(t, err)
	assert.Len(t, grouped.Today, 1)
	assert.Len(t, grouped.Yesterday, 1)
	assert.Len(t, grouped.ThisWeek, 1)
	assert.Len(t, grouped.Older, 1)

	other := createUser(t, db, "bob")
	empty, err := repo.GetGrouped(ctx, other.ID, now)
	require.NoError(t, err)
	assert.NotNil(t, empty.Today)
	assert.Empty(t, empty.Older)
}

func TestDeleteNotification(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	ctx := context.Background()
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")
	rows := seedNotifications(t, db, a.ID, 1)

	assert.ErrorIs(t, repo.DeleteNotification(ctx, rows[0].ID, b.ID), ErrNotFound)
	require.NoError(t, repo.DeleteNotification(ctx, rows[0].ID, a.ID))
	assert.ErrorIs(t, repo.DeleteNotification(ctx, rows[0].ID, a.ID), ErrNotFound)
}
