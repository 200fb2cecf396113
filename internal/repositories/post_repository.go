package repositories

import (
	"context"

	"github.com/causeconnect/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	ListPosts(ctx context.Context, filter models.PostFilter, page, limit int) ([]models.Post, int64, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	ToggleParticipant(ctx context.Context, userID, postID uint) (bool, error)
	CountParticipants(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	ParticipatingPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error)
	CountComments(ctx context.Context, postIDs []uint) (map[uint]int64, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post.Kind == "" {
		post.Kind = models.PostKindUpdate
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// ListPosts returns posts newest first. An empty AuthorIDs slice that is
// non-nil matches nothing.
func (r *PostgresPostRepository) ListPosts(ctx context.Context, filter models.PostFilter, page, limit int) ([]models.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if filter.AuthorIDs != nil {
		if len(filter.AuthorIDs) == 0 {
			return []models.Post{}, 0, nil
		}
		q = q.Where("author_id IN ?", filter.AuthorIDs)
	}
	if filter.EventID != 0 {
		q = q.Where("event_id = ?", filter.EventID)
	}
	if filter.SquadID != nil {
		q = q.Where("squad_id = ?", *filter.SquadID)
	} else {
		q = q.Where("squad_id IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// DeletePost removes the post with its comments and every reaction row on it
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := purgePosts(tx, []uint{id})
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// purgePosts deletes the posts with their comments and every row hanging off either
func purgePosts(tx *gorm.DB, postIDs []uint) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}
	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).Where("post_id IN ?", postIDs).Pluck("id", &commentIDs).Error; err != nil {
		return 0, err
	}
	if _, err := purgeComments(tx, commentIDs); err != nil {
		return 0, err
	}
	for _, model := range []interface{}{&models.Like{}, &models.PostParticipant{}, &models.SquadReaction{}} {
		if err := tx.Where("post_id IN ?", postIDs).Delete(model).Error; err != nil {
			return 0, err
		}
	}
	if err := tx.Where("target_type = ? AND target_id IN ?", models.BookmarkPost, postIDs).Delete(&models.Bookmark{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", postIDs).Delete(&models.Post{})
	return res.RowsAffected, res.Error
}

func (r *PostgresPostRepository) ToggleParticipant(ctx context.Context, userID, postID uint) (bool, error) {
	return toggle(ctx, r.db, &models.PostParticipant{UserID: userID, PostID: postID},
		map[string]interface{}{"user_id": userID, "post_id": postID})
}

func (r *PostgresPostRepository) CountParticipants(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, &models.PostParticipant{}, "post_id", postIDs)
}

func (r *PostgresPostRepository) ParticipatingPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	return idSet(ctx, r.db, &models.PostParticipant{}, "post_id", "user_id = ? AND post_id IN ?", userID, postIDs)
}

func (r *PostgresPostRepository) CountComments(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, &models.Comment{}, "post_id", postIDs)
}

type groupCount struct {
	GroupKey uint
	Total    int64
}

// countBy runs one grouped COUNT(*) over column for the given ids
func countBy(ctx context.Context, db *gorm.DB, model interface{}, column string, ids []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []groupCount
	err := db.WithContext(ctx).Model(model).
		Select(column+" AS group_key, COUNT(*) AS total").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.GroupKey] = row.Total
	}
	return result, nil
}
