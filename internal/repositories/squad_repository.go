package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/causeconnect/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SquadRepository covers squads, their membership and squad post reactions
type SquadRepository interface {
	CreateSquad(ctx context.Context, squad *models.Squad) error
	GetSquadByID(ctx context.Context, id uint) (*models.Squad, error)
	ListSquads(ctx context.Context, query, category string, page, limit int) ([]models.Squad, int64, error)
	UpdateSquad(ctx context.Context, squad *models.Squad) error
	DeleteSquad(ctx context.Context, id uint) error

	AddMember(ctx context.Context, squadID, userID uint, role string) error
	RemoveMember(ctx context.Context, squadID, userID uint) error
	GetMember(ctx context.Context, squadID, userID uint) (*models.SquadMember, error)
	GetMembers(ctx context.Context, squadID uint) ([]models.SquadMember, error)
	UpdateMemberRole(ctx context.Context, squadID, userID uint, role string) error
	CountMembers(ctx context.Context, squadIDs []uint) (map[uint]int64, error)
	MemberRoles(ctx context.Context, userID uint, squadIDs []uint) (map[uint]string, error)

	ToggleReaction(ctx context.Context, userID, postID uint, emoji string) (bool, error)
	GetReactionCounts(ctx context.Context, postID uint) ([]models.ReactionCount, error)
}

type postgresSquadRepository struct {
	db *gorm.DB
}

func NewPostgresSquadRepository(db *gorm.DB) SquadRepository {
	return &postgresSquadRepository{db: db}
}

// CreateSquad stores the squad and makes its owner the first admin
func (r *postgresSquadRepository) CreateSquad(ctx context.Context, squad *models.Squad) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(squad)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return tx.Create(&models.SquadMember{
			SquadID:  squad.ID,
			UserID:   squad.OwnerID,
			Role:     models.SquadRoleAdmin,
			JoinedAt: time.Now(),
		}).Error
	})
}

func (r *postgresSquadRepository) GetSquadByID(ctx context.Context, id uint) (*models.Squad, error) {
	var squad models.Squad
	if err := r.db.WithContext(ctx).First(&squad, id).Error; err != nil {
		return nil, translate(err)
	}
	return &squad, nil
}

func (r *postgresSquadRepository) ListSquads(ctx context.Context, query, category string, page, limit int) ([]models.Squad, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Squad{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var squads []models.Squad
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&squads).Error
	return squads, total, err
}

func (r *postgresSquadRepository) UpdateSquad(ctx context.Context, squad *models.Squad) error {
	return translate(r.db.WithContext(ctx).Save(squad).Error)
}

// DeleteSquad removes the squad, its members and its posts
func (r *postgresSquadRepository) DeleteSquad(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := purgeSquads(tx, []uint{id})
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// purgeSquads deletes the squads with their posts and memberships and
// reports how many squads were removed
func purgeSquads(tx *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var postIDs []uint
	if err := tx.Model(&models.Post{}).Where("squad_id IN ?", ids).Pluck("id", &postIDs).Error; err != nil {
		return 0, err
	}
	if _, err := purgePosts(tx, postIDs); err != nil {
		return 0, err
	}
	if err := tx.Where("squad_id IN ?", ids).Delete(&models.SquadMember{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", ids).Delete(&models.Squad{})
	return res.RowsAffected, res.Error
}

// AddMember joins the user to the squad; an existing membership is ErrConflict
func (r *postgresSquadRepository) AddMember(ctx context.Context, squadID, userID uint, role string) error {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.SquadMember{
		SquadID:  squadID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *postgresSquadRepository) RemoveMember(ctx context.Context, squadID, userID uint) error {
	res := r.db.WithContext(ctx).Where("squad_id = ? AND user_id = ?", squadID, userID).Delete(&models.SquadMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresSquadRepository) GetMember(ctx context.Context, squadID, userID uint) (*models.SquadMember, error) {
	var member models.SquadMember
	if err := r.db.WithContext(ctx).Where("squad_id = ? AND user_id = ?", squadID, userID).First(&member).Error; err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *postgresSquadRepository) GetMembers(ctx context.Context, squadID uint) ([]models.SquadMember, error) {
	var members []models.SquadMember
	err := r.db.WithContext(ctx).Where("squad_id = ?", squadID).Order("joined_at ASC").Order("id ASC").Find(&members).Error
	return members, err
}

func (r *postgresSquadRepository) UpdateMemberRole(ctx context.Context, squadID, userID uint, role string) error {
	res := r.db.WithContext(ctx).Model(&models.SquadMember{}).
		Where("squad_id = ? AND user_id = ?", squadID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresSquadRepository) CountMembers(ctx context.Context, squadIDs []uint) (map[uint]int64, error) {
	return countBy(ctx, r.db, &models.SquadMember{}, "squad_id", squadIDs)
}

// MemberRoles returns the user's role per squad for the squads they belong to
func (r *postgresSquadRepository) MemberRoles(ctx context.Context, userID uint, squadIDs []uint) (map[uint]string, error) {
	result := make(map[uint]string, len(squadIDs))
	if userID == 0 || len(squadIDs) == 0 {
		return result, nil
	}
	var members []models.SquadMember
	if err := r.db.WithContext(ctx).Where("user_id = ? AND squad_id IN ?", userID, squadIDs).Find(&members).Error; err != nil {
		return nil, err
	}
	for _, m := range members {
		result[m.SquadID] = m.Role
	}
	return result, nil
}

func (r *postgresSquadRepository) ToggleReaction(ctx context.Context, userID, postID uint, emoji string) (bool, error) {
	return toggle(ctx, r.db, &models.SquadReaction{PostID: postID, UserID: userID, Emoji: emoji},
		map[string]interface{}{"post_id": postID, "user_id": userID, "emoji": emoji})
}

func (r *postgresSquadRepository) GetReactionCounts(ctx context.Context, postID uint) ([]models.ReactionCount, error) {
	var counts []models.ReactionCount
	err := r.db.WithContext(ctx).Model(&models.SquadReaction{}).
		Select("emoji, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Group("emoji").
		Order("count DESC").Order("emoji ASC").
		Scan(&counts).Error
	return counts, err
}
