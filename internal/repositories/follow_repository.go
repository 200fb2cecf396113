package repositories

import (
	"context"

	"github.com/causeconnect/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository covers the social graph: follows and blocks
type FollowRepository interface {
	ToggleFollow(ctx context.Context, followerID, followingID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	ToggleBlock(ctx context.Context, blockerID, blockedID uint) (bool, error)
	IsBlocked(ctx context.Context, blockerID, blockedID uint) (bool, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) ToggleFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return toggle(ctx, r.db, &models.Follow{FollowerID: followerID, FollowingID: followingID},
		map[string]interface{}{"follower_id": followerID, "following_id": followingID})
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return exists(ctx, r.db, &models.Follow{}, map[string]interface{}{"follower_id": followerID, "following_id": followingID})
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN (?)",
		r.db.Table("follows").Select("follower_id").Where("following_id = ?", userID),
	).Order("name ASC").Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN (?)",
		r.db.Table("follows").Select("following_id").Where("follower_id = ?", userID),
	).Order("name ASC").Find(&users).Error
	return users, err
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	return count(ctx, r.db, &models.Follow{}, map[string]interface{}{"following_id": userID})
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	return count(ctx, r.db, &models.Follow{}, map[string]interface{}{"follower_id": userID})
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}

// ToggleBlock flips a block. Blocking also drops follows in both directions.
func (r *PostgresFollowRepository) ToggleBlock(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	active := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		active, err = toggleTx(tx, &models.Block{BlockerID: blockerID, BlockedID: blockedID},
			map[string]interface{}{"blocker_id": blockerID, "blocked_id": blockedID})
		if err != nil || !active {
			return err
		}
		return tx.Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)",
			blockerID, blockedID, blockedID, blockerID).Delete(&models.Follow{}).Error
	})
	return active, err
}

func (r *PostgresFollowRepository) IsBlocked(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	return exists(ctx, r.db, &models.Block{}, map[string]interface{}{"blocker_id": blockerID, "blocked_id": blockedID})
}
