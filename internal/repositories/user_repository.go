package repositories

import (
	"context"
	"strings"

	"github.com/causeconnect/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetCompactUsers(ctx context.Context, ids []uint) (map[uint]models.UserCompact, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uint) error
	SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("LOWER(username) = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetCompactUsers loads the compact form of every user in ids; unknown ids are skipped
func (r *PostgresUserRepository) GetCompactUsers(ctx context.Context, ids []uint) (map[uint]models.UserCompact, error) {
	result := make(map[uint]models.UserCompact, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		result[users[i].ID] = users[i].ToCompact()
	}
	return result, nil
}

func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

// DeleteUser removes the account together with its notifications, settings,
// owned squads and every join-table row it owns. Other authored content stays
// with a dangling author.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var squadIDs []uint
		if err := tx.Model(&models.Squad{}).Where("owner_id = ?", id).Pluck("id", &squadIDs).Error; err != nil {
			return err
		}
		if _, err := purgeSquads(tx, squadIDs); err != nil {
			return err
		}
		cascades := []struct {
			model interface{}
			where string
		}{
			{&models.Notification{}, "recipient_id = ?"},
			{&models.UserSettings{}, "user_id = ?"},
			{&models.Follow{}, "follower_id = ? OR following_id = ?"},
			{&models.Block{}, "blocker_id = ? OR blocked_id = ?"},
			{&models.Like{}, "user_id = ?"},
			{&models.PostParticipant{}, "user_id = ?"},
			{&models.SquadReaction{}, "user_id = ?"},
			{&models.CommentLike{}, "user_id = ?"},
			{&models.CommentAward{}, "giver_id = ?"},
			{&models.Bookmark{}, "user_id = ?"},
			{&models.Support{}, "user_id = ?"},
			{&models.Pass{}, "user_id = ?"},
			{&models.SquadMember{}, "user_id = ?"},
		}
		for _, c := range cascades {
			args := []interface{}{id}
			if strings.Contains(c.where, " OR ") {
				args = append(args, id)
			}
			if err := tx.Where(c.where, args...).Delete(c.model).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SearchUsers searches for users by name, username or email
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
