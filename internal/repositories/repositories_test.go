package repositories

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/causeconnect/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// newTestDB opens a private in-memory SQLite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.Relational()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Name: username, Username: username, Email: username + "@example.com"}
	require.NoError(t, NewPostgresUserRepository(db).CreateUser(context.Background(), u))
	return u
}

func createEvent(t *testing.T, db *gorm.DB, ownerID uint) *models.Event {
	t.Helper()
	e := &models.Event{OwnerID: ownerID, Title: "Clean the river", GoalAmount: 1000}
	require.NoError(t, NewPostgresEventRepository(db).CreateEvent(context.Background(), e))
	return e
}

func createPost(t *testing.T, db *gorm.DB, authorID uint) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: authorID, Content: "hello"}
	require.NoError(t, NewPostgresPostRepository(db).CreatePost(context.Background(), p))
	return p
}
