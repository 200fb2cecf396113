package repositories

import (
	"context"

	"github.com/causeconnect/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentLikeRepository defines the interface for comment likes and awards
type CommentLikeRepository interface {
	ToggleCommentLike(ctx context.Context, userID, commentID uint) (bool, error)
	HasUserLikedComment(ctx context.Context, userID, commentID uint) (bool, error)
	GetLikesCount(ctx context.Context, commentID uint) (int64, error)
	CountLikes(ctx context.Context, commentIDs []uint) (map[uint]int64, error)
	LikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error)
	CreateAward(ctx context.Context, award *models.CommentAward) error
	AwardCounts(ctx context.Context, commentIDs []uint) (map[uint]map[string]int64, error)
}

type postgresCommentLikeRepository struct {
	db *gorm.DB
}

func NewPostgresCommentLikeRepository(db *gorm.DB) CommentLikeRepository {
	return &postgresCommentLikeRepository{db: db}
}

func (r *postgresCommentLikeRepository) ToggleCommentLike(ctx context.Context, userID, commentID uint) (bool, error) {
	return toggle(ctx, r.db, &models.CommentLike{CommentID: commentID, UserID: userID},
		map[string]interface{}{"comment_id": commentID, "user_id": userID})
}

func (r *postgresCommentLikeRepository) HasUserLikedComment(ctx context.Context, userID, commentID uint) (bool, error) {
	return exists(ctx, r.db, &models.CommentLike{}, map[string]interface{}{"comment_id": commentID, "user_id": userID})
}

func (r *postgresCommentLikeRepository) GetLikesCount(ctx context.Context, commentID uint) (int64, error) {
	return count(ctx, r.db, &models.CommentLike{}, map[string]interface{}{"comment_id": commentID})
}

func (r *postgresCommentLikeRepository) CountLikes(ctx context.Context, commentIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, &models.CommentLike{}, "comment_id", commentIDs)
}

func (r *postgresCommentLikeRepository) LikedCommentIDs(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error) {
	return idSet(ctx, r.db, &models.CommentLike{}, "comment_id", "user_id = ? AND comment_id IN ?", userID, commentIDs)
}

// CreateAward stores the award once; giving the same award again is ErrConflict
func (r *postgresCommentLikeRepository) CreateAward(ctx context.Context, award *models.CommentAward) error {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(award)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

type awardCount struct {
	CommentID uint
	Award     string
	Total     int64
}

func (r *postgresCommentLikeRepository) AwardCounts(ctx context.Context, commentIDs []uint) (map[uint]map[string]int64, error) {
	result := make(map[uint]map[string]int64)
	if len(commentIDs) == 0 {
		return result, nil
	}
	var rows []awardCount
	err := r.db.WithContext(ctx).Model(&models.CommentAward{}).
		Select("comment_id, award, COUNT(*) AS total").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id, award").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if result[row.CommentID] == nil {
			result[row.CommentID] = make(map[string]int64)
		}
		result[row.CommentID][row.Award] = row.Total
	}
	return result, nil
}
