package repositories

import (
	"context"

	"github.com/causeconnect/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for post like and bookmark operations
type LikeRepository interface {
	ToggleLike(ctx context.Context, userID, postID uint) (bool, error)
	HasUserLikedPost(ctx context.Context, userID, postID uint) (bool, error)
	GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error)
	CountLikes(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error)

	ToggleBookmark(ctx context.Context, userID uint, targetType string, targetID uint) (bool, error)
	BookmarkedIDs(ctx context.Context, userID uint, targetType string, ids []uint) (map[uint]bool, error)
	GetBookmarks(ctx context.Context, userID uint, targetType string) ([]models.Bookmark, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	return toggle(ctx, r.db, &models.Like{PostID: postID, UserID: userID},
		map[string]interface{}{"post_id": postID, "user_id": userID})
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, userID, postID uint) (bool, error) {
	return exists(ctx, r.db, &models.Like{}, map[string]interface{}{"post_id": postID, "user_id": userID})
}

func (r *PostgresLikeRepository) GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error) {
	return count(ctx, r.db, &models.Like{}, map[string]interface{}{"post_id": postID})
}

func (r *PostgresLikeRepository) CountLikes(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, &models.Like{}, "post_id", postIDs)
}

func (r *PostgresLikeRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	return idSet(ctx, r.db, &models.Like{}, "post_id", "user_id = ? AND post_id IN ?", userID, postIDs)
}

func (r *PostgresLikeRepository) ToggleBookmark(ctx context.Context, userID uint, targetType string, targetID uint) (bool, error) {
	return toggle(ctx, r.db, &models.Bookmark{UserID: userID, TargetType: targetType, TargetID: targetID},
		map[string]interface{}{"user_id": userID, "target_type": targetType, "target_id": targetID})
}

func (r *PostgresLikeRepository) BookmarkedIDs(ctx context.Context, userID uint, targetType string, ids []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(ids))
	if len(ids) == 0 || userID == 0 {
		return result, nil
	}
	var found []uint
	err := r.db.WithContext(ctx).Model(&models.Bookmark{}).
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, targetType, ids).
		Pluck("target_id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}

// GetBookmarks lists the user's bookmarks, newest first; an empty targetType lists all
func (r *PostgresLikeRepository) GetBookmarks(ctx context.Context, userID uint, targetType string) ([]models.Bookmark, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if targetType != "" {
		q = q.Where("target_type = ?", targetType)
	}
	var bookmarks []models.Bookmark
	err := q.Order("created_at DESC").Order("id DESC").Find(&bookmarks).Error
	return bookmarks, err
}
